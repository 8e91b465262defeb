package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphexplorer/application/ports"
	"graphexplorer/domain/core/entities"
	"graphexplorer/domain/core/valueobjects"
)

func layoutNodes(t *testing.T, ids ...string) []*entities.Node {
	t.Helper()
	nodes := make([]*entities.Node, 0, len(ids))
	for _, id := range ids {
		n, err := entities.NewNode(valueobjects.MustNodeID(id), entities.TypeNote, id, 0)
		require.NoError(t, err)
		nodes = append(nodes, n)
	}
	return nodes
}

func runAndWait(t *testing.T, engine *StaticEngine, req ports.LayoutRequest) ports.LayoutResult {
	t.Helper()
	done := make(chan ports.LayoutResult, 1)
	engine.Run(req, func(r ports.LayoutResult) { done <- r })
	select {
	case r := <-done:
		return r
	case <-time.After(time.Second):
		t.Fatal("layout did not settle")
		return ports.LayoutResult{}
	}
}

func TestStaticLayoutIsDeterministic(t *testing.T) {
	engine := NewStaticEngine(zap.NewNop())
	req := ports.LayoutRequest{
		Generation:  7,
		Nodes:       layoutNodes(t, "c", "a", "b", "d"),
		NodeSpacing: 50,
	}

	first := runAndWait(t, engine, req)
	second := runAndWait(t, engine, req)

	assert.Equal(t, uint64(7), first.Generation)
	assert.Equal(t, first.Positions, second.Positions)
	assert.Len(t, first.Positions, 4)
}

func TestStaticLayoutRespectsSpacing(t *testing.T) {
	engine := NewStaticEngine(zap.NewNop())
	result := runAndWait(t, engine, ports.LayoutRequest{
		Nodes:       layoutNodes(t, "a", "b"),
		NodeSpacing: 100,
	})

	a := result.Positions[valueobjects.MustNodeID("a")]
	b := result.Positions[valueobjects.MustNodeID("b")]
	assert.GreaterOrEqual(t, a.DistanceTo(b), float64(100))
}

func TestStaticLayoutEmptyRequest(t *testing.T) {
	engine := NewStaticEngine(zap.NewNop())
	result := runAndWait(t, engine, ports.LayoutRequest{Generation: 1})
	assert.Empty(t, result.Positions)
}
