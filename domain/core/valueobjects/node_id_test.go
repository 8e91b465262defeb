package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeIDRejectsEmpty(t *testing.T) {
	_, err := NewNodeID("   ")
	assert.Error(t, err)

	id, err := NewNodeID(" n1 ")
	require.NoError(t, err)
	assert.Equal(t, "n1", id.String())
}

func TestNodeIDJSONEscapesSpecialCharacters(t *testing.T) {
	id := MustNodeID(`node "7" \ alpha`)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	var decoded NodeID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equals(decoded))
}

func TestNodeIDUnmarshalRejectsNonString(t *testing.T) {
	var id NodeID
	assert.Error(t, json.Unmarshal([]byte(`42`), &id))

	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.True(t, id.IsZero())
}
