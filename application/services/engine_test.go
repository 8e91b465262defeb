package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphexplorer/application/ports"
	"graphexplorer/application/queries"
	"graphexplorer/domain/core/entities"
	"graphexplorer/domain/core/valueobjects"
	"graphexplorer/domain/events"
	"graphexplorer/pkg/observability"
)

type fakeSource struct {
	full    *ports.GraphPayload
	fullErr error
	ego     func(centerID valueobjects.NodeID, depth int) (*ports.GraphPayload, error)

	egoCalls []egoCall
}

type egoCall struct {
	centerID valueobjects.NodeID
	depth    int
}

func (s *fakeSource) FetchFullGraph(ctx context.Context) (*ports.GraphPayload, error) {
	return s.full, s.fullErr
}

func (s *fakeSource) FetchEgoGraph(ctx context.Context, centerID valueobjects.NodeID, depth int) (*ports.GraphPayload, error) {
	s.egoCalls = append(s.egoCalls, egoCall{centerID: centerID, depth: depth})
	return s.ego(centerID, depth)
}

type layoutRun struct {
	req     ports.LayoutRequest
	settled func(ports.LayoutResult)
}

type fakeLayout struct {
	runs []layoutRun
}

func (l *fakeLayout) Run(req ports.LayoutRequest, settled func(ports.LayoutResult)) {
	l.runs = append(l.runs, layoutRun{req: req, settled: settled})
}

func (l *fakeLayout) settleAll(positions map[string]valueobjects.Position) {
	if len(l.runs) == 0 {
		return
	}
	last := l.runs[len(l.runs)-1]
	last.settled(layoutResult(last.req.Generation, positions))
}

type capturePublisher struct {
	types []string
}

func (p *capturePublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.types = append(p.types, event.GetEventType())
	return nil
}

// taskQueue replaces the engine's goroutine dispatch so tests control
// when, and in which order, background fetches complete.
type taskQueue struct {
	tasks []func()
}

func (q *taskQueue) dispatch(fn func()) {
	q.tasks = append(q.tasks, fn)
}

func (q *taskQueue) drain() {
	for len(q.tasks) > 0 {
		next := q.tasks[0]
		q.tasks = q.tasks[1:]
		next()
	}
}

func (q *taskQueue) run(i int) {
	fn := q.tasks[i]
	q.tasks = append(q.tasks[:i], q.tasks[i+1:]...)
	fn()
}

type enginePack struct {
	engine *Engine
	source *fakeSource
	layout *fakeLayout
	clock  *fakeClock
	pub    *capturePublisher
	queue  *taskQueue

	cameras    []CameraCommand
	selected   []string
	edgeClicks []queries.VisualEdge
	highlights []Highlight
	errs       []error
}

func newTestEngine(t *testing.T) *enginePack {
	t.Helper()
	p := &enginePack{
		source: &fakeSource{},
		layout: &fakeLayout{},
		clock:  newFakeClock(),
		pub:    &capturePublisher{},
		queue:  &taskQueue{},
	}
	p.source.full = fullPayload(t)
	p.source.ego = func(centerID valueobjects.NodeID, depth int) (*ports.GraphPayload, error) {
		return fullPayload(t), nil
	}
	p.engine = NewEngine(p.source, p.layout, p.pub, p.clock, observability.NewMetrics(), zap.NewNop(), EngineConfig{
		DefaultHopDepth: 1,
	})
	p.engine.runAsync = p.queue.dispatch
	p.engine.SetCallbacks(HostCallbacks{
		OnNodeSelected: func(n *entities.Node) { p.selected = append(p.selected, n.ID().String()) },
		OnEdgeSelected: func(e queries.VisualEdge) { p.edgeClicks = append(p.edgeClicks, e) },
		OnCamera:       func(cmd CameraCommand) { p.cameras = append(p.cameras, cmd) },
		OnHighlight:    func(h Highlight) { p.highlights = append(p.highlights, h) },
		OnError:        func(err error) { p.errs = append(p.errs, err) },
	})
	return p
}

func (p *enginePack) loadFull(t *testing.T) {
	t.Helper()
	p.engine.Load()
	p.queue.drain()
	require.False(t, p.engine.Loading())
}

func TestEngineLoadBuildsSnapshot(t *testing.T) {
	p := newTestEngine(t)

	p.engine.Load()
	assert.True(t, p.engine.Loading())
	p.queue.drain()

	snap := p.engine.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, ModeFull, snap.Mode)
	assert.Len(t, snap.Nodes, 3)
	// a-b carries two raw edges aggregated into one visual edge.
	require.Len(t, snap.Edges, 2)
	ve, ok := queries.FindVisualEdge(snap.Edges, valueobjects.MustNodeID("a"), valueobjects.MustNodeID("b"))
	require.True(t, ok)
	assert.Equal(t, 2, ve.Multiplicity)
	assert.Equal(t, "2 relationships", ve.Label)
}

func TestEngineFetchFailureKeepsLastGoodState(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	before := p.engine.Snapshot()

	p.source.ego = func(valueobjects.NodeID, int) (*ports.GraphPayload, error) {
		return nil, assert.AnError
	}
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	p.queue.drain()

	after := p.engine.Snapshot()
	assert.Equal(t, before.Mode, after.Mode)
	assert.Equal(t, before.Generation, after.Generation)
	assert.Len(t, after.Nodes, len(before.Nodes))
	assert.False(t, after.Loading)
	require.Len(t, p.errs, 1)
}

func TestEngineStaleFetchDiscarded(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)

	p.source.ego = func(centerID valueobjects.NodeID, depth int) (*ports.GraphPayload, error) {
		return &ports.GraphPayload{
			Nodes: []*entities.Node{node(t, centerID.String(), entities.TypePerson, 1)},
		}, nil
	}
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("a")))
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	require.Len(t, p.queue.tasks, 2)

	// The newer request completes first; the older one arrives late and
	// must not clobber it.
	p.queue.run(1)
	p.queue.run(0)

	snap := p.engine.Snapshot()
	assert.Equal(t, ModeEgo, snap.Mode)
	assert.Equal(t, "b", snap.CenterID.String())
	assert.False(t, snap.Loading)
	assert.Empty(t, p.errs)
}

func TestEngineDoubleClickEntersEgoFromFull(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)

	p.engine.Click(valueobjects.MustNodeID("b"))
	p.engine.Click(valueobjects.MustNodeID("b"))
	p.queue.drain()

	snap := p.engine.Snapshot()
	assert.Equal(t, ModeEgo, snap.Mode)
	assert.Equal(t, "b", snap.CenterID.String())
	assert.Empty(t, p.selected, "the held single click must not fire")
}

func TestEngineDoubleClickOnCenterIsNoOp(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	p.queue.drain()
	p.source.egoCalls = nil

	// The center's neighborhood is already loaded, so double-clicking it
	// neither fetches nor re-centers.
	p.engine.Click(valueobjects.MustNodeID("b"))
	p.engine.Click(valueobjects.MustNodeID("b"))
	p.queue.drain()

	assert.Empty(t, p.source.egoCalls)
	assert.Equal(t, ModeEgo, p.engine.Snapshot().Mode)
	assert.Equal(t, "b", p.engine.Snapshot().CenterID.String())
}

func TestEngineDoubleClickOnPeripheralRecentersWhenFullyVisible(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	p.queue.drain()

	// Node a has totalRelationshipCount 2 and both incident raw edges on
	// screen, so a double-click re-centers instead of expanding.
	p.engine.Click(valueobjects.MustNodeID("a"))
	p.engine.Click(valueobjects.MustNodeID("a"))
	p.queue.drain()

	snap := p.engine.Snapshot()
	assert.Equal(t, ModeEgo, snap.Mode)
	assert.Equal(t, "a", snap.CenterID.String())
}

func TestEngineDoubleClickOnPeripheralWithHiddenRelationshipsExpands(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)

	// Ego payload where c claims 5 backend relationships but only one is
	// on screen.
	p.source.ego = func(centerID valueobjects.NodeID, depth int) (*ports.GraphPayload, error) {
		return &ports.GraphPayload{
			Nodes: []*entities.Node{
				node(t, "b", entities.TypeProject, 2),
				node(t, "c", entities.TypeGoal, 5),
			},
			Edges: []entities.RawEdge{edge(t, "b", "c", "supports")},
		}, nil
	}
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	p.queue.drain()
	p.source.egoCalls = nil

	p.engine.Click(valueobjects.MustNodeID("c"))
	p.engine.Click(valueobjects.MustNodeID("c"))
	p.queue.drain()

	require.Len(t, p.source.egoCalls, 1)
	assert.Equal(t, "c", p.source.egoCalls[0].centerID.String())
	// Still centered on b; the expansion merged around c.
	assert.Equal(t, "b", p.engine.Snapshot().CenterID.String())
}

func TestEngineSingleClickSelectsAndHighlights(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)

	p.engine.Click(valueobjects.MustNodeID("a"))
	p.clock.Advance(DefaultSingleClickDelay)

	assert.Equal(t, []string{"a"}, p.selected)
	snap := p.engine.Snapshot()
	assert.Equal(t, "a", snap.Highlight.NodeID.String())
}

func TestEngineLayoutSettleMovesCameraOnce(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	require.NotEmpty(t, p.layout.runs)

	positions := map[string]valueobjects.Position{
		"a": {X: 0, Y: 0},
		"b": {X: 100, Y: 0},
		"c": {X: 50, Y: 80},
	}
	p.layout.settleAll(positions)

	require.Len(t, p.cameras, 1)
	assert.Equal(t, CameraFit, p.cameras[0].Op)
	assert.Equal(t, float64(100), p.cameras[0].Bounds.MaxX)

	// A physics re-settle keeps the camera put.
	p.layout.settleAll(positions)
	assert.Len(t, p.cameras, 1)

	snap := p.engine.Snapshot()
	for _, sn := range snap.Nodes {
		assert.NotNil(t, sn.Position)
	}
}

func TestEngineEgoSettleCentersOnCenter(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	p.queue.drain()

	p.layout.settleAll(map[string]valueobjects.Position{
		"a": {X: 0, Y: 0},
		"b": {X: 10, Y: 20},
		"c": {X: 90, Y: 90},
	})

	require.NotEmpty(t, p.cameras)
	last := p.cameras[len(p.cameras)-1]
	assert.Equal(t, CameraCenter, last.Op)
	assert.Equal(t, valueobjects.Position{X: 10, Y: 20}, last.Target)
}

func TestEngineHideDoesNotMoveCamera(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	p.queue.drain()
	p.layout.settleAll(map[string]valueobjects.Position{
		"a": {X: 0, Y: 0}, "b": {X: 10, Y: 20}, "c": {X: 90, Y: 90},
	})
	camerasBefore := len(p.cameras)
	runsBefore := len(p.layout.runs)

	p.engine.HideNode(valueobjects.MustNodeID("a"))

	snap := p.engine.Snapshot()
	assert.Equal(t, 1, snap.HiddenCount)
	assert.Greater(t, len(p.layout.runs), runsBefore, "hiding restarts the layout")

	// The relayout settles at the same generation; camera stays put.
	p.layout.settleAll(map[string]valueobjects.Position{
		"b": {X: 10, Y: 20}, "c": {X: 90, Y: 90},
	})
	assert.Len(t, p.cameras, camerasBefore)
}

func TestEngineFocusNodePans(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)

	// Before any settle the node has no position; focus is a no-op.
	p.engine.FocusNode(valueobjects.MustNodeID("a"))
	assert.Empty(t, p.cameras)

	p.layout.settleAll(map[string]valueobjects.Position{
		"a": {X: 7, Y: 9}, "b": {X: 0, Y: 0}, "c": {X: 1, Y: 1},
	})
	camerasAfterFit := len(p.cameras)

	p.engine.FocusNode(valueobjects.MustNodeID("a"))
	require.Len(t, p.cameras, camerasAfterFit+1)
	last := p.cameras[len(p.cameras)-1]
	assert.Equal(t, CameraPan, last.Op)
	assert.Equal(t, valueobjects.Position{X: 7, Y: 9}, last.Target)
	assert.Equal(t, "a", p.engine.Snapshot().Highlight.NodeID.String())
}

func TestEngineFocusNodeIgnoresInvisibleNodes(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	p.queue.drain()
	p.layout.settleAll(map[string]valueobjects.Position{
		"a": {X: 0, Y: 0}, "b": {X: 1, Y: 1}, "c": {X: 2, Y: 2},
	})
	camerasBefore := len(p.cameras)

	// Manually hidden.
	p.engine.HideNode(valueobjects.MustNodeID("a"))
	p.engine.FocusNode(valueobjects.MustNodeID("a"))
	assert.Len(t, p.cameras, camerasBefore)
	assert.True(t, p.engine.Snapshot().Highlight.IsZero())

	// Filtered out by type.
	p.engine.SetTypeVisible(entities.TypeGoal, false)
	p.engine.FocusNode(valueobjects.MustNodeID("c"))
	assert.Len(t, p.cameras, camerasBefore)
	assert.True(t, p.engine.Snapshot().Highlight.IsZero())

	// Still focusable once restored.
	p.engine.UnhideAll()
	p.engine.FocusNode(valueobjects.MustNodeID("a"))
	assert.Len(t, p.cameras, camerasBefore+1)
}

func TestEngineFocusEdgePansToMidpoint(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	p.layout.settleAll(map[string]valueobjects.Position{
		"a": {X: 0, Y: 0}, "b": {X: 10, Y: 10}, "c": {X: 50, Y: 50},
	})
	camerasAfterFit := len(p.cameras)

	p.engine.FocusEdge(valueobjects.MustNodeID("a"), valueobjects.MustNodeID("b"))
	require.Len(t, p.cameras, camerasAfterFit+1)
	last := p.cameras[len(p.cameras)-1]
	assert.Equal(t, CameraPan, last.Op)
	assert.Equal(t, valueobjects.Position{X: 5, Y: 5}, last.Target)

	snap := p.engine.Snapshot()
	require.NotNil(t, snap.Highlight.Edge)
}

func TestEngineClickEdgeSelects(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)

	p.engine.ClickEdge(valueobjects.MustNodeID("b"), valueobjects.MustNodeID("a"))
	require.Len(t, p.edgeClicks, 1)
	assert.Equal(t, 2, p.edgeClicks[0].Multiplicity)

	// No edge between a and c.
	p.engine.ClickEdge(valueobjects.MustNodeID("a"), valueobjects.MustNodeID("c"))
	assert.Len(t, p.edgeClicks, 1)
}

func TestEngineReplaceClearsHighlightAndPrunesPositions(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	p.layout.settleAll(map[string]valueobjects.Position{
		"a": {X: 0, Y: 0}, "b": {X: 1, Y: 1}, "c": {X: 2, Y: 2},
	})
	p.engine.Click(valueobjects.MustNodeID("a"))
	p.clock.Advance(DefaultSingleClickDelay)
	require.False(t, p.engine.Snapshot().Highlight.IsZero())

	p.source.ego = func(centerID valueobjects.NodeID, depth int) (*ports.GraphPayload, error) {
		return &ports.GraphPayload{
			Nodes: []*entities.Node{node(t, "b", entities.TypeProject, 2)},
		}, nil
	}
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	p.queue.drain()

	snap := p.engine.Snapshot()
	assert.True(t, snap.Highlight.IsZero())
	require.Len(t, snap.Nodes, 1)
	// b survived the replace and keeps its settled position so the new
	// view does not start blank.
	require.NotNil(t, snap.Nodes[0].Position)
	assert.Equal(t, valueobjects.Position{X: 1, Y: 1}, *snap.Nodes[0].Position)

	// a and c were dropped by the replace; when they come back with the
	// full graph their stale positions are gone.
	p.engine.ExitEgo()
	p.queue.drain()
	for _, sn := range p.engine.Snapshot().Nodes {
		if sn.Node.ID().Equals(valueobjects.MustNodeID("b")) {
			assert.NotNil(t, sn.Position)
		} else {
			assert.Nil(t, sn.Position)
		}
	}
}

func TestEngineExpandMarksHasMore(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)

	p.source.ego = func(centerID valueobjects.NodeID, depth int) (*ports.GraphPayload, error) {
		return &ports.GraphPayload{
			Nodes: []*entities.Node{
				node(t, "b", entities.TypeProject, 2),
				node(t, "c", entities.TypeGoal, 4),
			},
			Edges: []entities.RawEdge{edge(t, "b", "c", "supports")},
		}, nil
	}
	require.NoError(t, p.engine.EnterEgo(valueobjects.MustNodeID("b")))
	p.queue.drain()

	snap := p.engine.Snapshot()
	for _, sn := range snap.Nodes {
		if sn.Node.ID().Equals(valueobjects.MustNodeID("c")) {
			assert.True(t, sn.HasMore)
		}
	}
}

func TestEngineApplyTuningRerunsLayout(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)
	runsBefore := len(p.layout.runs)

	p.engine.ApplyTuning(120, InteractionTiming{})
	require.Len(t, p.layout.runs, runsBefore+1)
	assert.Equal(t, float64(120), p.layout.runs[len(p.layout.runs)-1].req.NodeSpacing)

	// Same spacing again changes nothing.
	p.engine.ApplyTuning(120, InteractionTiming{})
	assert.Len(t, p.layout.runs, runsBefore+1)
}

func TestEnginePublishesDomainEvents(t *testing.T) {
	p := newTestEngine(t)
	p.loadFull(t)

	assert.Contains(t, p.pub.types, "graph.replaced")
	assert.Contains(t, p.pub.types, "navigator.mode_changed")

	p.layout.settleAll(map[string]valueobjects.Position{
		"a": {X: 0, Y: 0}, "b": {X: 1, Y: 1}, "c": {X: 2, Y: 2},
	})
	assert.Contains(t, p.pub.types, "layout.settled")
	assert.Contains(t, p.pub.types, "viewport.camera_moved")
}
