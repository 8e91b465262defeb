package services

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphexplorer/application/ports"
	"graphexplorer/application/queries"
	"graphexplorer/domain/core/aggregates"
	"graphexplorer/domain/core/entities"
	"graphexplorer/domain/core/valueobjects"
	"graphexplorer/domain/events"
	pkgerrors "graphexplorer/pkg/errors"
)

// Mode is the navigator's top-level state
type Mode string

const (
	// ModeFull shows the entire loaded graph
	ModeFull Mode = "full"
	// ModeEgo shows the neighborhood of a center node
	ModeEgo Mode = "ego"
)

const (
	// MinHopDepth and MaxHopDepth bound the ego neighborhood radius
	MinHopDepth = 1
	MaxHopDepth = 5
)

// FetchKind distinguishes the outstanding fetch slots
type FetchKind string

const (
	// FetchFull loads the whole graph (initial load and ego exit)
	FetchFull FetchKind = "full"
	// FetchEgo loads a fresh ego neighborhood (focus, re-center, depth change)
	FetchEgo FetchKind = "ego"
	// FetchExpansion merges one node's immediate neighborhood
	FetchExpansion FetchKind = "expansion"
)

// PendingFetch is the bookkeeping for one in-flight graph fetch. The
// token pins the fetch to the load sequence current when it was issued;
// a completion whose token no longer matches is stale and discarded.
type PendingFetch struct {
	ID       string
	Kind     FetchKind
	Token    uint64
	CenterID valueobjects.NodeID
	Depth    int
	ExpandID valueobjects.NodeID
}

// Navigator is the state machine governing full-graph vs ego-centered
// exploration: neighborhood expansion, node hide/unhide, depth control
// and stale-response protection. It owns the view state and mutates the
// graph store; it never performs I/O itself.
type Navigator struct {
	graph    *aggregates.Graph
	mode     Mode
	centerID valueobjects.NodeID
	hopDepth int
	view     queries.ViewState
	expanded map[valueobjects.NodeID]struct{}

	// loadSeq is bumped for every replacing fetch. Expansions capture it
	// without bumping, so a replace issued after an expansion invalidates
	// the expansion's result but not the other way round.
	loadSeq uint64

	logger *zap.Logger
	events []events.DomainEvent
}

// NewNavigator creates a navigator in full mode with the given default depth
func NewNavigator(graph *aggregates.Graph, defaultDepth int, logger *zap.Logger) *Navigator {
	return &Navigator{
		graph:    graph,
		mode:     ModeFull,
		hopDepth: clampDepth(defaultDepth),
		view:     queries.NewViewState(),
		expanded: make(map[valueobjects.NodeID]struct{}),
		logger:   logger,
		events:   []events.DomainEvent{},
	}
}

// Mode returns the current mode
func (n *Navigator) Mode() Mode { return n.mode }

// CenterID returns the ego center; zero while in full mode
func (n *Navigator) CenterID() valueobjects.NodeID { return n.centerID }

// HopDepth returns the current ego neighborhood radius
func (n *Navigator) HopDepth() int { return n.hopDepth }

// View returns the current view state
func (n *Navigator) View() queries.ViewState { return n.view }

// IsExpanded reports whether the node's neighborhood has already been
// fetched and merged, which suppresses redundant expansion fetches
func (n *Navigator) IsExpanded(id valueobjects.NodeID) bool {
	_, ok := n.expanded[id]
	return ok
}

// HiddenCount returns the number of manually hidden nodes
func (n *Navigator) HiddenCount() int { return len(n.view.HiddenNodeIDs) }

// BeginLoadFull starts a full-graph load. Used for the initial load and
// for exiting ego mode.
func (n *Navigator) BeginLoadFull() *PendingFetch {
	n.loadSeq++
	return &PendingFetch{
		ID:    uuid.New().String(),
		Kind:  FetchFull,
		Token: n.loadSeq,
	}
}

// BeginFocus starts a fresh ego load centered on the given node at the
// current hop depth. Valid from full mode (enter ego) and from ego mode
// (re-center). The node must currently be loaded.
func (n *Navigator) BeginFocus(id valueobjects.NodeID) (*PendingFetch, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("center node ID cannot be empty")
	}
	if !n.graph.HasNode(id) {
		return nil, pkgerrors.NewNotFoundError("node " + id.String())
	}
	n.loadSeq++
	return &PendingFetch{
		ID:       uuid.New().String(),
		Kind:     FetchEgo,
		Token:    n.loadSeq,
		CenterID: id,
		Depth:    n.hopDepth,
	}, nil
}

// BeginDepthChange starts a fresh ego load for the current center at a
// new depth. A depth change is a full re-derivation, not a merge:
// shrinking the depth must drop now-out-of-range nodes, so the store is
// replaced from the new fetch alone. Returns nil when the clamped depth
// equals the current one.
func (n *Navigator) BeginDepthChange(depth int) (*PendingFetch, error) {
	if n.mode != ModeEgo {
		return nil, pkgerrors.NewValidationError("hop depth only applies in ego mode")
	}
	depth = clampDepth(depth)
	if depth == n.hopDepth {
		return nil, nil
	}
	n.loadSeq++
	return &PendingFetch{
		ID:       uuid.New().String(),
		Kind:     FetchEgo,
		Token:    n.loadSeq,
		CenterID: n.centerID,
		Depth:    depth,
	}, nil
}

// SetDepthPreference records the depth to use for the next ego entry.
// Only meaningful in full mode; in ego mode depth changes go through
// BeginDepthChange so the neighborhood is re-fetched.
func (n *Navigator) SetDepthPreference(depth int) {
	if n.mode == ModeFull {
		n.hopDepth = clampDepth(depth)
	}
}

// BeginExpand starts a depth-1 neighborhood fetch for an already-loaded
// node, to be merged into the store. Returns nil when the node was
// already expanded: its neighborhood is known complete client-side and
// no network call is needed.
func (n *Navigator) BeginExpand(id valueobjects.NodeID) (*PendingFetch, error) {
	if n.mode != ModeEgo {
		return nil, pkgerrors.NewValidationError("expansion only applies in ego mode")
	}
	if !n.graph.HasNode(id) {
		return nil, pkgerrors.NewNotFoundError("node " + id.String())
	}
	if n.IsExpanded(id) {
		return nil, nil
	}
	return &PendingFetch{
		ID:       uuid.New().String(),
		Kind:     FetchExpansion,
		Token:    n.loadSeq,
		ExpandID: id,
		Depth:    1,
	}, nil
}

// BeginExit starts the full-graph load that leaves ego mode. Returns nil
// when already in full mode.
func (n *Navigator) BeginExit() *PendingFetch {
	if n.mode != ModeEgo {
		return nil
	}
	return n.BeginLoadFull()
}

// ApplyLoad installs the payload of a replacing fetch (full, focus,
// re-center, depth change, exit). Stale completions return a stale error
// and leave all state untouched.
func (n *Navigator) ApplyLoad(p *PendingFetch, payload *ports.GraphPayload) error {
	if p == nil || payload == nil {
		return pkgerrors.NewValidationError("nil fetch or payload")
	}
	if p.Token != n.loadSeq {
		n.logger.Debug("Discarding stale load result",
			zap.String("fetchID", p.ID),
			zap.Uint64("token", p.Token),
			zap.Uint64("current", n.loadSeq),
		)
		return pkgerrors.NewStaleError(string(p.Kind))
	}

	switch p.Kind {
	case FetchFull:
		n.graph.Replace(payload.Nodes, payload.Edges)
		n.mode = ModeFull
		n.centerID = valueobjects.NodeID{}
		n.view = queries.NewViewState()
		n.expanded = make(map[valueobjects.NodeID]struct{})
		n.addEvent(events.NewModeChanged(string(ModeFull), valueobjects.NodeID{}, n.hopDepth, time.Now()))

	case FetchEgo:
		if !containsNode(payload.Nodes, p.CenterID) {
			return pkgerrors.NewExternalError("graph service", nil).
				WithDetails(map[string]interface{}{"missing_center": p.CenterID.String()})
		}
		sameCenter := n.mode == ModeEgo && n.centerID.Equals(p.CenterID)
		prevHidden := n.view.HiddenNodeIDs
		prevTypes := n.view.VisibleTypes

		n.graph.Replace(payload.Nodes, payload.Edges)
		n.mode = ModeEgo
		n.centerID = p.CenterID
		n.hopDepth = p.Depth
		n.view = queries.NewViewState()
		n.view.EgoMode = true
		if sameCenter {
			// A depth change keeps the same center, so the user's manual
			// hides and type toggles survive it. A different center
			// resets both.
			n.view.HiddenNodeIDs = prevHidden
			n.view.VisibleTypes = prevTypes
		}
		n.expanded = map[valueobjects.NodeID]struct{}{p.CenterID: {}}
		n.addEvent(events.NewModeChanged(string(ModeEgo), p.CenterID, p.Depth, time.Now()))

	default:
		return pkgerrors.NewValidationError("expansion results must go through ApplyExpansion")
	}

	return nil
}

// ApplyExpansion merges the payload of an expansion fetch. A node that
// was manually hidden and comes back as a neighbor is unhidden: it cannot
// be simultaneously hidden and freshly revealed. The expanded node is
// recorded only on success so a failed or stale expansion stays retryable.
func (n *Navigator) ApplyExpansion(p *PendingFetch, payload *ports.GraphPayload) (addedNodes int, err error) {
	if p == nil || payload == nil {
		return 0, pkgerrors.NewValidationError("nil fetch or payload")
	}
	if p.Kind != FetchExpansion {
		return 0, pkgerrors.NewValidationError("not an expansion fetch")
	}
	if p.Token != n.loadSeq || n.mode != ModeEgo {
		n.logger.Debug("Discarding stale expansion result",
			zap.String("fetchID", p.ID),
			zap.String("nodeID", p.ExpandID.String()),
		)
		return 0, pkgerrors.NewStaleError(string(FetchExpansion))
	}

	added, _ := n.graph.Merge(payload.Nodes, payload.Edges)

	for _, node := range payload.Nodes {
		delete(n.view.HiddenNodeIDs, node.ID())
	}
	n.expanded[p.ExpandID] = struct{}{}
	n.addEvent(events.NewNodeExpanded(p.ExpandID, len(added), time.Now()))

	return len(added), nil
}

// Hide adds a node to the manual hide set. Permitted only in ego mode
// and never for the center node; rejected requests are silent no-ops,
// reported through the return value.
func (n *Navigator) Hide(id valueobjects.NodeID) bool {
	if n.mode != ModeEgo {
		return false
	}
	if id.IsZero() || id.Equals(n.centerID) {
		return false
	}
	if !n.graph.HasNode(id) {
		return false
	}
	if _, already := n.view.HiddenNodeIDs[id]; already {
		return false
	}
	n.view.HiddenNodeIDs[id] = struct{}{}
	n.addEvent(events.NewNodeHidden(id, time.Now()))
	return true
}

// UnhideAll clears the manual hide set without any fetch
func (n *Navigator) UnhideAll() int {
	count := len(n.view.HiddenNodeIDs)
	if count == 0 {
		return 0
	}
	n.view.HiddenNodeIDs = make(map[valueobjects.NodeID]struct{})
	n.addEvent(events.NewNodesUnhidden(count, time.Now()))
	return count
}

// SetTypeVisible toggles visibility for a node type. Applies in both modes.
func (n *Navigator) SetTypeVisible(t entities.NodeType, visible bool) {
	if !t.IsValid() {
		return
	}
	n.view.VisibleTypes[t] = visible
}

// GetUncommittedEvents returns all uncommitted navigation events
func (n *Navigator) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(n.events))
	copy(out, n.events)
	return out
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *Navigator) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

func (n *Navigator) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}

func clampDepth(d int) int {
	if d < MinHopDepth {
		return MinHopDepth
	}
	if d > MaxHopDepth {
		return MaxHopDepth
	}
	return d
}

func containsNode(nodes []*entities.Node, id valueobjects.NodeID) bool {
	for _, n := range nodes {
		if n.ID().Equals(id) {
			return true
		}
	}
	return false
}
