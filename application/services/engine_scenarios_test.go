package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphexplorer/application/ports"
	"graphexplorer/application/queries"
	"graphexplorer/domain/core/entities"
	"graphexplorer/domain/core/valueobjects"
)

// Full exploration sessions driven end to end through the engine facade.

func TestScenarioFocusHideAndRestore(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	p.layout.settleAll(map[string]valueobjects.Position{
		"a": {X: 0, Y: 0}, "b": {X: 40, Y: 0}, "c": {X: 20, Y: 30},
	})

	// Double-clicking b enters its neighborhood.
	p.engine.Click(valueobjects.MustNodeID("b"))
	p.engine.Click(valueobjects.MustNodeID("b"))
	p.queue.drain()
	require.Equal(t, ModeEgo, p.engine.Snapshot().Mode)

	// b kept its settled position across the replace, so focusing it
	// pans straight away.
	p.engine.FocusNode(valueobjects.MustNodeID("b"))
	last := p.cameras[len(p.cameras)-1]
	assert.Equal(t, CameraPan, last.Op)
	assert.Equal(t, "b", p.engine.Snapshot().Highlight.NodeID.String())

	p.engine.HideNode(valueobjects.MustNodeID("a"))
	snap := p.engine.Snapshot()
	assert.Len(t, snap.Nodes, 2)
	require.Len(t, snap.Edges, 1)
	// Both a-b relationships went off screen with a; only b-c remains.
	assert.Equal(t, "supports", snap.Edges[0].Label)
	assert.Equal(t, "b", snap.Highlight.NodeID.String(), "hiding another node keeps the highlight")

	p.engine.UnhideAll()
	snap = p.engine.Snapshot()
	assert.Len(t, snap.Nodes, 3)
	assert.Len(t, snap.Edges, 2)
	assert.Equal(t, 0, snap.HiddenCount)
}

func TestScenarioDepthWideningKeepsHiddenNodes(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)

	p.source.ego = func(centerID valueobjects.NodeID, depth int) (*ports.GraphPayload, error) {
		nodes := []*entities.Node{
			node(t, "b", entities.TypeProject, 2),
			node(t, "a", entities.TypePerson, 2),
			node(t, "c", entities.TypeGoal, 2),
		}
		edges := []entities.RawEdge{
			edge(t, "a", "b", "works_with"),
			edge(t, "b", "c", "supports"),
		}
		if depth >= 2 {
			nodes = append(nodes, node(t, "x", entities.TypePerson, 1))
			edges = append(edges, edge(t, "c", "x", "relates_to"))
		}
		return &ports.GraphPayload{Nodes: nodes, Edges: edges}, nil
	}

	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	p.queue.drain()
	p.engine.HideNode(valueobjects.MustNodeID("a"))

	require.NoError(t, p.engine.SetHopDepth(2))
	p.queue.drain()

	snap := p.engine.Snapshot()
	assert.Equal(t, ModeEgo, snap.Mode)
	assert.Equal(t, 2, snap.HopDepth)
	assert.Equal(t, 1, snap.HiddenCount, "widening the radius keeps manual hides")
	assert.Len(t, snap.Nodes, 3)
	_, ok := queries.FindVisualEdge(snap.Edges, valueobjects.MustNodeID("c"), valueobjects.MustNodeID("x"))
	assert.True(t, ok, "the wider ring is on screen")

	p.engine.ExitEgo()
	p.queue.drain()

	snap = p.engine.Snapshot()
	assert.Equal(t, ModeFull, snap.Mode)
	assert.Equal(t, 0, snap.HiddenCount, "leaving ego mode resets the view state")
}

func TestScenarioGestureSession(t *testing.T) {
	p := newTestEngine(t)

	var selected []string
	var hovered []string
	p.engine.SetCallbacks(HostCallbacks{
		OnNodeSelected: func(n *entities.Node) { selected = append(selected, n.ID().String()) },
		OnHover: func(n *entities.Node, visible bool) {
			if visible {
				hovered = append(hovered, "show:"+n.ID().String())
			} else {
				hovered = append(hovered, "hide:"+n.ID().String())
			}
		},
	})
	p.loadFull(t)

	// A rapid double-click enters ego mode without leaking a selection.
	p.engine.Click(valueobjects.MustNodeID("b"))
	p.engine.Click(valueobjects.MustNodeID("b"))
	p.queue.drain()
	p.clock.Advance(DefaultSingleClickDelay)
	assert.Empty(t, selected)
	assert.Equal(t, ModeEgo, p.engine.Snapshot().Mode)

	// A lone click resolves as a selection once the hold expires.
	p.engine.Click(valueobjects.MustNodeID("a"))
	p.clock.Advance(DefaultSingleClickDelay)
	assert.Equal(t, []string{"a"}, selected)

	// Hover shows immediately; moving into the detail keeps it open.
	p.engine.HoverEnter(valueobjects.MustNodeID("c"))
	assert.Equal(t, []string{"show:c"}, hovered)
	p.engine.HoverLeave()
	p.engine.KeepHoverOpen()
	p.clock.Advance(DefaultHoverHideDelay)
	assert.Equal(t, []string{"show:c"}, hovered)

	// Leaving for good hides after the grace period.
	p.engine.HoverLeave()
	p.clock.Advance(DefaultHoverHideDelay)
	assert.Equal(t, []string{"show:c", "hide:c"}, hovered)
}
