package events

import (
	"time"

	"graphexplorer/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// Graph store events

// GraphReplaced is raised when the whole client-side graph is swapped out
type GraphReplaced struct {
	BaseEvent
	Generation uint64 `json:"generation"`
	NodeCount  int    `json:"node_count"`
	EdgeCount  int    `json:"edge_count"`
}

// NewGraphReplaced creates a GraphReplaced event
func NewGraphReplaced(generation uint64, nodeCount, edgeCount int, timestamp time.Time) GraphReplaced {
	return GraphReplaced{
		BaseEvent: BaseEvent{
			AggregateID: "graph",
			EventType:   "graph.replaced",
			Timestamp:   timestamp,
		},
		Generation: generation,
		NodeCount:  nodeCount,
		EdgeCount:  edgeCount,
	}
}

// GraphMerged is raised when an expansion adds to the client-side graph
type GraphMerged struct {
	BaseEvent
	Generation uint64 `json:"generation"`
	AddedNodes int    `json:"added_nodes"`
	AddedEdges int    `json:"added_edges"`
}

// NewGraphMerged creates a GraphMerged event
func NewGraphMerged(generation uint64, addedNodes, addedEdges int, timestamp time.Time) GraphMerged {
	return GraphMerged{
		BaseEvent: BaseEvent{
			AggregateID: "graph",
			EventType:   "graph.merged",
			Timestamp:   timestamp,
		},
		Generation: generation,
		AddedNodes: addedNodes,
		AddedEdges: addedEdges,
	}
}

// Navigation events

// ModeChanged is raised when the navigator switches between full and ego mode
// or re-centers on a different node
type ModeChanged struct {
	BaseEvent
	Mode     string              `json:"mode"`
	CenterID valueobjects.NodeID `json:"center_id,omitempty"`
	HopDepth int                 `json:"hop_depth"`
}

// NewModeChanged creates a ModeChanged event
func NewModeChanged(mode string, centerID valueobjects.NodeID, hopDepth int, timestamp time.Time) ModeChanged {
	return ModeChanged{
		BaseEvent: BaseEvent{
			AggregateID: "navigator",
			EventType:   "navigator.mode_changed",
			Timestamp:   timestamp,
		},
		Mode:     mode,
		CenterID: centerID,
		HopDepth: hopDepth,
	}
}

// NodeHidden is raised when a node is manually hidden in ego mode
type NodeHidden struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeHidden creates a NodeHidden event
func NewNodeHidden(nodeID valueobjects.NodeID, timestamp time.Time) NodeHidden {
	return NodeHidden{
		BaseEvent: BaseEvent{
			AggregateID: "navigator",
			EventType:   "navigator.node_hidden",
			Timestamp:   timestamp,
		},
		NodeID: nodeID,
	}
}

// NodesUnhidden is raised when manual hides are cleared
type NodesUnhidden struct {
	BaseEvent
	Count int `json:"count"`
}

// NewNodesUnhidden creates a NodesUnhidden event
func NewNodesUnhidden(count int, timestamp time.Time) NodesUnhidden {
	return NodesUnhidden{
		BaseEvent: BaseEvent{
			AggregateID: "navigator",
			EventType:   "navigator.nodes_unhidden",
			Timestamp:   timestamp,
		},
		Count: count,
	}
}

// NodeExpanded is raised when a node's neighborhood is merged in
type NodeExpanded struct {
	BaseEvent
	NodeID     valueobjects.NodeID `json:"node_id"`
	AddedNodes int                 `json:"added_nodes"`
}

// NewNodeExpanded creates a NodeExpanded event
func NewNodeExpanded(nodeID valueobjects.NodeID, addedNodes int, timestamp time.Time) NodeExpanded {
	return NodeExpanded{
		BaseEvent: BaseEvent{
			AggregateID: "navigator",
			EventType:   "navigator.node_expanded",
			Timestamp:   timestamp,
		},
		NodeID:     nodeID,
		AddedNodes: addedNodes,
	}
}

// Layout events

// LayoutSettled is raised when the layout engine reports a stable layout
// for a particular graph generation
type LayoutSettled struct {
	BaseEvent
	Generation uint64 `json:"generation"`
}

// NewLayoutSettled creates a LayoutSettled event
func NewLayoutSettled(generation uint64, timestamp time.Time) LayoutSettled {
	return LayoutSettled{
		BaseEvent: BaseEvent{
			AggregateID: "layout",
			EventType:   "layout.settled",
			Timestamp:   timestamp,
		},
		Generation: generation,
	}
}

// CameraMoved is raised when the viewport coordinator issues a camera command
type CameraMoved struct {
	BaseEvent
	Kind string `json:"kind"` // "center" or "fit"
}

// NewCameraMoved creates a CameraMoved event
func NewCameraMoved(kind string, timestamp time.Time) CameraMoved {
	return CameraMoved{
		BaseEvent: BaseEvent{
			AggregateID: "viewport",
			EventType:   "viewport.camera_moved",
			Timestamp:   timestamp,
		},
		Kind: kind,
	}
}
