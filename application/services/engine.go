package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"graphexplorer/application/ports"
	"graphexplorer/application/queries"
	"graphexplorer/domain/core/aggregates"
	"graphexplorer/domain/core/entities"
	"graphexplorer/domain/core/valueobjects"
	"graphexplorer/domain/events"
	"graphexplorer/pkg/errors"
	"graphexplorer/pkg/observability"
)

// EngineConfig carries the tunable parameters of the exploration engine
type EngineConfig struct {
	DefaultHopDepth int
	FetchTimeout    time.Duration
	NodeSpacing     float64
	Timing          InteractionTiming
}

// Highlight is the current selection emphasis: at most one node or one
// visual edge at a time
type Highlight struct {
	NodeID valueobjects.NodeID
	Edge   *valueobjects.PairKey
}

// IsZero reports whether nothing is highlighted
func (h Highlight) IsZero() bool {
	return h.NodeID.IsZero() && h.Edge == nil
}

// HostCallbacks are the hooks the embedding host registers to observe
// the engine. All of them are optional and all are invoked without the
// engine lock held, so they may call back into the engine.
type HostCallbacks struct {
	// OnNodeSelected fires when a single click resolves on a node
	OnNodeSelected func(node *entities.Node)
	// OnEdgeSelected fires when an aggregated edge is clicked
	OnEdgeSelected func(edge queries.VisualEdge)
	// OnHover fires on hover show (visible true) and hide (visible false)
	OnHover func(node *entities.Node, visible bool)
	// OnCamera fires for every camera command the engine issues
	OnCamera func(cmd CameraCommand)
	// OnHighlight fires whenever the selection emphasis changes
	OnHighlight func(h Highlight)
	// OnStateChanged fires after any state mutation; hosts typically
	// re-pull Snapshot from it
	OnStateChanged func()
	// OnError fires when a background fetch fails. The engine keeps its
	// last good state; the host decides how to surface the failure.
	OnError func(err error)
}

// SnapshotNode is one renderable node with its settled position, if the
// layout has produced one yet
type SnapshotNode struct {
	Node     *entities.Node
	Position *valueobjects.Position
	// HasMore marks ego-mode nodes whose backend relationship count
	// exceeds what is currently on screen, i.e. expansion would reveal
	// something
	HasMore bool
}

// Snapshot is the full renderable state of the engine at one instant
type Snapshot struct {
	Mode        Mode
	CenterID    valueobjects.NodeID
	HopDepth    int
	Generation  uint64
	Loading     bool
	Nodes       []SnapshotNode
	Edges       []queries.VisualEdge
	HiddenCount int
	Highlight   Highlight
	TypeFilter  map[entities.NodeType]bool
}

// Engine is the façade tying the graph store, navigator, viewport and
// disambiguator together behind one mutex. Fetches and layout runs
// happen off the lock; their completions re-acquire it and are validated
// against the navigator's load sequence before anything is applied, so a
// late completion can never clobber newer state.
type Engine struct {
	mu sync.Mutex

	cfg       EngineConfig
	source    ports.GraphSource
	layout    ports.LayoutEngine
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger

	graph     *aggregates.Graph
	navigator *Navigator
	viewport  *Viewport
	disamb    *Disambiguator

	positions map[valueobjects.NodeID]valueobjects.Position
	inflight  int
	highlight Highlight

	callbacks HostCallbacks

	// runAsync dispatches background work; tests replace it with a
	// synchronous runner for determinism
	runAsync func(fn func())
}

// NewEngine wires an exploration engine from its collaborators. The
// engine starts empty in full mode; call Load to populate it.
func NewEngine(
	source ports.GraphSource,
	layoutEngine ports.LayoutEngine,
	publisher ports.EventPublisher,
	clock ports.Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
	cfg EngineConfig,
) *Engine {
	if cfg.DefaultHopDepth == 0 {
		cfg.DefaultHopDepth = MinHopDepth
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.NodeSpacing <= 0 {
		cfg.NodeSpacing = 80
	}

	graph := aggregates.NewGraph()
	e := &Engine{
		cfg:       cfg,
		source:    source,
		layout:    layoutEngine,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		graph:     graph,
		navigator: NewNavigator(graph, cfg.DefaultHopDepth, logger),
		viewport:  NewViewport(logger),
		positions: make(map[valueobjects.NodeID]valueobjects.Position),
		runAsync:  func(fn func()) { go fn() },
	}
	e.disamb = NewDisambiguator(clock, cfg.Timing, InteractionHandlers{
		SingleClick: e.handleSingleClick,
		DoubleClick: e.handleDoubleClick,
		HoverShow:   e.handleHoverShow,
		HoverHide:   e.handleHoverHide,
	}, logger)
	return e
}

// SetCallbacks registers the host hooks. Call before feeding events.
func (e *Engine) SetCallbacks(cb HostCallbacks) {
	e.mu.Lock()
	e.callbacks = cb
	e.mu.Unlock()
}

// ApplyTuning updates the hot-reloadable parameters. A spacing change
// re-runs the layout on the current graph; the new timing applies to
// the next gesture.
func (e *Engine) ApplyTuning(nodeSpacing float64, timing InteractionTiming) {
	e.mu.Lock()
	if nodeSpacing > 0 && nodeSpacing != e.cfg.NodeSpacing {
		e.cfg.NodeSpacing = nodeSpacing
		e.kickLayoutLocked()
	}
	e.mu.Unlock()
	e.disamb.SetTiming(timing)
}

// Load starts the initial full-graph fetch. Also usable to refresh the
// full graph while in full mode.
func (e *Engine) Load() {
	e.mu.Lock()
	p := e.navigator.BeginLoadFull()
	e.inflight++
	e.mu.Unlock()

	e.startFetch(p)
}

// EnterEgo focuses the exploration on the given node, fetching its
// neighborhood at the current hop depth. Valid both for entering ego
// mode from full mode and for re-centering within ego mode.
func (e *Engine) EnterEgo(id valueobjects.NodeID) error {
	e.mu.Lock()
	p, err := e.navigator.BeginFocus(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.inflight++
	e.mu.Unlock()

	e.startFetch(p)
	return nil
}

// ExitEgo returns to the full graph. No-op outside ego mode.
func (e *Engine) ExitEgo() {
	e.mu.Lock()
	p := e.navigator.BeginExit()
	if p == nil {
		e.mu.Unlock()
		return
	}
	e.inflight++
	e.mu.Unlock()

	e.startFetch(p)
}

// SetHopDepth changes the neighborhood radius. In ego mode it re-fetches
// the neighborhood at the new depth; in full mode it only records the
// preference for the next ego entry.
func (e *Engine) SetHopDepth(depth int) error {
	e.mu.Lock()
	if e.navigator.Mode() == ModeFull {
		e.navigator.SetDepthPreference(depth)
		e.mu.Unlock()
		return nil
	}
	p, err := e.navigator.BeginDepthChange(depth)
	if err != nil || p == nil {
		e.mu.Unlock()
		return err
	}
	e.inflight++
	e.mu.Unlock()

	e.startFetch(p)
	return nil
}

// ExpandNode fetches and merges the immediate neighborhood of a node
// already on screen. Only meaningful in ego mode; an already-expanded
// node is a silent no-op.
func (e *Engine) ExpandNode(id valueobjects.NodeID) error {
	e.mu.Lock()
	p, err := e.navigator.BeginExpand(id)
	if err != nil || p == nil {
		e.mu.Unlock()
		return err
	}
	e.inflight++
	e.mu.Unlock()

	e.startFetch(p)
	return nil
}

// HideNode removes one node from the ego view without fetching
func (e *Engine) HideNode(id valueobjects.NodeID) {
	e.mu.Lock()
	if !e.navigator.Hide(id) {
		e.mu.Unlock()
		return
	}
	if e.highlight.NodeID.Equals(id) {
		e.highlight = Highlight{}
	}
	e.afterMutationLocked()
}

// UnhideAll restores every manually hidden node
func (e *Engine) UnhideAll() {
	e.mu.Lock()
	if e.navigator.UnhideAll() == 0 {
		e.mu.Unlock()
		return
	}
	e.afterMutationLocked()
}

// SetTypeVisible toggles an entire node type on or off
func (e *Engine) SetTypeVisible(t entities.NodeType, visible bool) {
	e.mu.Lock()
	view := e.navigator.View()
	if view.VisibleTypes[t] == visible {
		e.mu.Unlock()
		return
	}
	e.navigator.SetTypeVisible(t, visible)
	e.afterMutationLocked()
}

// FocusNode pans the camera to a node and highlights it. Unknown nodes,
// nodes outside the visible set and nodes without a settled position are
// silent no-ops.
func (e *Engine) FocusNode(id valueobjects.NodeID) {
	e.mu.Lock()
	node, ok := e.graph.GetNode(id)
	if !ok {
		e.mu.Unlock()
		return
	}
	view := e.navigator.View()
	if _, hidden := view.HiddenNodeIDs[id]; hidden || !view.VisibleTypes[node.Type()] {
		e.mu.Unlock()
		return
	}
	pos, ok := e.positions[id]
	if !ok {
		e.mu.Unlock()
		return
	}
	cmd := e.viewport.PanTo(pos, e.graph.Generation())
	e.highlight = Highlight{NodeID: id}
	h := e.highlight
	cb := e.callbacks
	e.mu.Unlock()

	e.emitCamera(cb, *cmd)
	if cb.OnHighlight != nil {
		cb.OnHighlight(h)
	}
}

// FocusEdge pans the camera to the midpoint between two endpoints and
// highlights the aggregated edge between them. A no-op unless both
// endpoints have settled positions and an edge exists between them.
func (e *Engine) FocusEdge(a, b valueobjects.NodeID) {
	e.mu.Lock()
	posA, okA := e.positions[a]
	posB, okB := e.positions[b]
	if !okA || !okB {
		e.mu.Unlock()
		return
	}
	visible := queries.ComputeVisible(e.graph, e.navigator.View())
	visual := queries.AggregateEdges(visible.RawEdges)
	ve, found := queries.FindVisualEdge(visual, a, b)
	if !found {
		e.mu.Unlock()
		return
	}
	cmd := e.viewport.PanTo(posA.Midpoint(posB), e.graph.Generation())
	key := ve.PairKey
	e.highlight = Highlight{Edge: &key}
	h := e.highlight
	cb := e.callbacks
	e.mu.Unlock()

	e.emitCamera(cb, *cmd)
	if cb.OnHighlight != nil {
		cb.OnHighlight(h)
	}
}

// ClearHighlight drops the selection emphasis, typically on a background
// click
func (e *Engine) ClearHighlight() {
	e.mu.Lock()
	if e.highlight.IsZero() {
		e.mu.Unlock()
		return
	}
	e.highlight = Highlight{}
	cb := e.callbacks
	e.mu.Unlock()

	if cb.OnHighlight != nil {
		cb.OnHighlight(Highlight{})
	}
}

// Click feeds a raw pointer click on a node. Resolution into single or
// double click is delegated to the disambiguator, whose callbacks
// re-enter the engine, so no engine lock is held here.
func (e *Engine) Click(id valueobjects.NodeID) {
	e.disamb.Click(id)
}

// ClickEdge feeds a click on an aggregated edge. Edge clicks have no
// double-click meaning, so they bypass the disambiguator.
func (e *Engine) ClickEdge(a, b valueobjects.NodeID) {
	e.mu.Lock()
	visible := queries.ComputeVisible(e.graph, e.navigator.View())
	visual := queries.AggregateEdges(visible.RawEdges)
	ve, found := queries.FindVisualEdge(visual, a, b)
	if !found {
		e.mu.Unlock()
		return
	}
	key := ve.PairKey
	e.highlight = Highlight{Edge: &key}
	h := e.highlight
	cb := e.callbacks
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.RecordGesture("edge_click")
	}
	if cb.OnEdgeSelected != nil {
		cb.OnEdgeSelected(ve)
	}
	if cb.OnHighlight != nil {
		cb.OnHighlight(h)
	}
}

// HoverEnter feeds a pointer-over on a node
func (e *Engine) HoverEnter(id valueobjects.NodeID) {
	e.disamb.HoverEnter(id)
}

// HoverLeave feeds a pointer-out
func (e *Engine) HoverLeave() {
	e.disamb.HoverLeave()
}

// KeepHoverOpen cancels a pending hover hide; called when the pointer
// moves into the hover detail panel
func (e *Engine) KeepHoverOpen() {
	e.disamb.KeepHoverOpen()
}

// Snapshot returns the complete renderable state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	visible := queries.ComputeVisible(e.graph, e.navigator.View())
	visual := queries.AggregateEdges(visible.RawEdges)
	egoMode := e.navigator.Mode() == ModeEgo

	nodes := make([]SnapshotNode, 0, len(visible.Nodes))
	for _, n := range visible.Nodes {
		sn := SnapshotNode{Node: n}
		if pos, ok := e.positions[n.ID()]; ok {
			p := pos
			sn.Position = &p
		}
		if egoMode {
			sn.HasMore = n.HasHiddenRelationships(visible.VisibleIncidentEdgeCount(n.ID()))
		}
		nodes = append(nodes, sn)
	}

	typeFilter := make(map[entities.NodeType]bool, len(entities.AllNodeTypes()))
	for t, visible := range e.navigator.View().VisibleTypes {
		typeFilter[t] = visible
	}

	return Snapshot{
		Mode:        e.navigator.Mode(),
		CenterID:    e.navigator.CenterID(),
		HopDepth:    e.navigator.HopDepth(),
		Generation:  e.graph.Generation(),
		Loading:     e.inflight > 0,
		Nodes:       nodes,
		Edges:       visual,
		HiddenCount: e.navigator.HiddenCount(),
		Highlight:   e.highlight,
		TypeFilter:  typeFilter,
	}
}

// NodeInfo returns one loaded node together with its hide and expand
// state. ok is false when the node is not loaded at all.
func (e *Engine) NodeInfo(id valueobjects.NodeID) (node *entities.Node, hidden, expanded, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	node, ok = e.graph.GetNode(id)
	if !ok {
		return nil, false, false, false
	}
	_, hidden = e.navigator.View().HiddenNodeIDs[id]
	expanded = e.navigator.IsExpanded(id)
	return node, hidden, expanded, true
}

// Loading reports whether any fetch is in flight
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inflight > 0
}

// startFetch dispatches the I/O for a pending fetch off the lock and
// routes the completion back through the navigator's staleness checks.
func (e *Engine) startFetch(p *PendingFetch) {
	e.runAsync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.FetchTimeout)
		defer cancel()

		start := time.Now()
		var payload *ports.GraphPayload
		var err error
		switch p.Kind {
		case FetchFull:
			payload, err = e.source.FetchFullGraph(ctx)
		case FetchEgo:
			payload, err = e.source.FetchEgoGraph(ctx, p.CenterID, p.Depth)
		case FetchExpansion:
			payload, err = e.source.FetchEgoGraph(ctx, p.ExpandID, 1)
		}
		if e.metrics != nil {
			status := "ok"
			if err != nil {
				status = "error"
			}
			e.metrics.RecordFetch(string(p.Kind), status, time.Since(start))
		}
		e.completeFetch(p, payload, err)
	})
}

func (e *Engine) completeFetch(p *PendingFetch, payload *ports.GraphPayload, fetchErr error) {
	e.mu.Lock()
	e.inflight--

	if fetchErr != nil {
		// Last good state is kept; the failure only surfaces to the host.
		cb := e.callbacks
		e.logger.Warn("Graph fetch failed",
			zap.String("kind", string(p.Kind)),
			zap.String("fetchID", p.ID),
			zap.Error(fetchErr),
		)
		e.mu.Unlock()
		if cb.OnError != nil {
			cb.OnError(fetchErr)
		}
		if cb.OnStateChanged != nil {
			cb.OnStateChanged()
		}
		return
	}

	var applyErr error
	if p.Kind == FetchExpansion {
		_, applyErr = e.navigator.ApplyExpansion(p, payload)
	} else {
		applyErr = e.navigator.ApplyLoad(p, payload)
	}

	if applyErr != nil {
		cb := e.callbacks
		if errors.IsStale(applyErr) {
			if e.metrics != nil {
				e.metrics.RecordStaleDiscard(string(p.Kind))
			}
			e.mu.Unlock()
			return
		}
		e.logger.Warn("Graph fetch result rejected",
			zap.String("kind", string(p.Kind)),
			zap.Error(applyErr),
		)
		e.mu.Unlock()
		if cb.OnError != nil {
			cb.OnError(applyErr)
		}
		return
	}

	if p.Kind != FetchExpansion {
		// A replacing load invalidates everything derived from the old
		// graph: positions, pending gestures, selection, auto-framing.
		e.prunePositions()
		e.viewport.Reset()
		e.highlight = Highlight{}
		e.disamb.Reset()
	}
	if e.metrics != nil {
		e.metrics.SetGraphSize(e.graph.NodeCount(), e.graph.EdgeCount())
	}
	e.afterMutationLocked()
}

// afterMutationLocked runs the shared post-mutation tail: starts a
// layout run over the new visible graph, drains pending domain events
// and notifies the host. Must be entered with the lock held; it unlocks.
func (e *Engine) afterMutationLocked() {
	e.kickLayoutLocked()
	pending := e.drainEventsLocked()
	cb := e.callbacks
	e.mu.Unlock()

	e.publishEvents(pending)
	if cb.OnStateChanged != nil {
		cb.OnStateChanged()
	}
}

// kickLayoutLocked starts an asynchronous layout run over the currently
// visible graph. Settles for superseded generations are dropped on
// arrival, so an in-flight older run is harmless.
func (e *Engine) kickLayoutLocked() {
	visible := queries.ComputeVisible(e.graph, e.navigator.View())
	if len(visible.Nodes) == 0 {
		return
	}
	visual := queries.AggregateEdges(visible.RawEdges)

	edges := make([]ports.LayoutEdge, 0, len(visual))
	for _, ve := range visual {
		edges = append(edges, ports.LayoutEdge{SourceID: ve.SourceID, TargetID: ve.TargetID})
	}
	req := ports.LayoutRequest{
		Generation:  e.graph.Generation(),
		Nodes:       visible.Nodes,
		Edges:       edges,
		NodeSpacing: e.cfg.NodeSpacing,
	}
	if e.metrics != nil {
		e.metrics.RecordLayoutRun()
	}
	e.layout.Run(req, e.onLayoutSettled)
}

// onLayoutSettled is invoked by the layout engine, possibly from its own
// goroutine and possibly more than once per run.
func (e *Engine) onLayoutSettled(result ports.LayoutResult) {
	e.mu.Lock()
	if e.metrics != nil {
		e.metrics.RecordLayoutSettle()
	}
	if result.Generation != e.graph.Generation() {
		e.mu.Unlock()
		return
	}
	for id, pos := range result.Positions {
		if e.graph.HasNode(id) {
			e.positions[id] = pos
		}
	}
	cmd, moveCamera := e.viewport.OnLayoutSettled(result, e.graph.Generation(), e.navigator.Mode(), e.navigator.CenterID())
	cb := e.callbacks
	e.mu.Unlock()

	e.publishEvents([]events.DomainEvent{events.NewLayoutSettled(result.Generation, time.Now())})
	if moveCamera {
		e.emitCamera(cb, *cmd)
	}
	if cb.OnStateChanged != nil {
		cb.OnStateChanged()
	}
}

func (e *Engine) emitCamera(cb HostCallbacks, cmd CameraCommand) {
	if e.metrics != nil {
		e.metrics.RecordCameraMove(string(cmd.Op))
	}
	e.publishEvents([]events.DomainEvent{events.NewCameraMoved(string(cmd.Op), time.Now())})
	if cb.OnCamera != nil {
		cb.OnCamera(cmd)
	}
}

func (e *Engine) handleSingleClick(id valueobjects.NodeID) {
	if e.metrics != nil {
		e.metrics.RecordGesture("single_click")
	}
	e.mu.Lock()
	node, ok := e.graph.GetNode(id)
	if !ok {
		e.mu.Unlock()
		return
	}
	e.highlight = Highlight{NodeID: id}
	h := e.highlight
	cb := e.callbacks
	e.mu.Unlock()

	if cb.OnNodeSelected != nil {
		cb.OnNodeSelected(node)
	}
	if cb.OnHighlight != nil {
		cb.OnHighlight(h)
	}
}

// handleDoubleClick dispatches the mode-dependent double-click action:
// in full mode it enters ego mode on the node; in ego mode it expands
// the center, expands a peripheral node that still has off-screen
// relationships, and re-centers otherwise.
func (e *Engine) handleDoubleClick(id valueobjects.NodeID) {
	if e.metrics != nil {
		e.metrics.RecordGesture("double_click")
	}
	e.mu.Lock()
	node, ok := e.graph.GetNode(id)
	if !ok {
		e.mu.Unlock()
		return
	}
	mode := e.navigator.Mode()
	center := e.navigator.CenterID()
	expand := false
	if mode == ModeEgo {
		if center.Equals(id) {
			expand = true
		} else {
			visible := queries.ComputeVisible(e.graph, e.navigator.View())
			expand = node.HasHiddenRelationships(visible.VisibleIncidentEdgeCount(id))
		}
	}
	e.mu.Unlock()

	var err error
	switch {
	case mode == ModeFull:
		err = e.EnterEgo(id)
	case expand:
		err = e.ExpandNode(id)
	default:
		err = e.EnterEgo(id)
	}
	if err != nil {
		e.logger.Warn("Double-click action rejected",
			zap.String("nodeID", id.String()),
			zap.Error(err),
		)
	}
}

func (e *Engine) handleHoverShow(id valueobjects.NodeID) {
	e.mu.Lock()
	node, ok := e.graph.GetNode(id)
	cb := e.callbacks
	e.mu.Unlock()
	if !ok {
		return
	}
	if cb.OnHover != nil {
		cb.OnHover(node, true)
	}
}

func (e *Engine) handleHoverHide(id valueobjects.NodeID) {
	e.mu.Lock()
	node, _ := e.graph.GetNode(id)
	cb := e.callbacks
	e.mu.Unlock()
	if cb.OnHover != nil {
		cb.OnHover(node, false)
	}
}

// prunePositions drops settled positions for nodes no longer loaded
func (e *Engine) prunePositions() {
	for id := range e.positions {
		if !e.graph.HasNode(id) {
			delete(e.positions, id)
		}
	}
}

func (e *Engine) drainEventsLocked() []events.DomainEvent {
	pending := append(e.navigator.GetUncommittedEvents(), e.graph.GetUncommittedEvents()...)
	e.navigator.MarkEventsAsCommitted()
	e.graph.MarkEventsAsCommitted()
	return pending
}

func (e *Engine) publishEvents(pending []events.DomainEvent) {
	if e.publisher == nil {
		return
	}
	for _, ev := range pending {
		if err := e.publisher.Publish(context.Background(), ev); err != nil {
			e.logger.Debug("Event publish failed",
				zap.String("eventType", ev.GetEventType()),
				zap.Error(err),
			)
		}
	}
}
