package valueobjects

import (
	"encoding/json"
	"errors"
	"strings"
)

// NodeID is a value object representing a unique node identifier.
// Identifiers are opaque strings assigned by the graph service; the
// engine never generates them, it only carries them around.
type NodeID struct {
	value string
}

// NewNodeID creates a NodeID from an existing identifier string
func NewNodeID(id string) (NodeID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	return NodeID{value: id}, nil
}

// MustNodeID creates a NodeID and panics on an empty identifier.
// Intended for tests and static fixtures.
func MustNodeID(id string) NodeID {
	nid, err := NewNodeID(id)
	if err != nil {
		panic(err)
	}
	return nid
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return errors.New("NodeID must be a string")
	}
	id.value = value
	return nil
}
