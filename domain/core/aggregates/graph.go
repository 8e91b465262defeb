package aggregates

import (
	"time"

	"graphexplorer/domain/core/entities"
	"graphexplorer/domain/core/valueobjects"
	"graphexplorer/domain/events"
)

// Graph is the aggregate root for the client-side graph state. It owns
// the canonical set of nodes and raw edges currently loaded and enforces
// the replace/merge contract: a fresh load swaps the whole graph, an
// expansion unions into it without duplication.
type Graph struct {
	nodesByID  map[valueobjects.NodeID]*entities.Node
	rawEdges   map[entities.EdgeKey]entities.RawEdge
	generation uint64
	updatedAt  time.Time
	events     []events.DomainEvent
}

// NewGraph creates an empty graph aggregate
func NewGraph() *Graph {
	return &Graph{
		nodesByID: make(map[valueobjects.NodeID]*entities.Node),
		rawEdges:  make(map[entities.EdgeKey]entities.RawEdge),
		events:    []events.DomainEvent{},
	}
}

// Generation returns a counter bumped on every mutation. Layout runs and
// camera moves are keyed to it so late completions for an older graph can
// be recognized and dropped.
func (g *Graph) Generation() uint64 {
	return g.generation
}

// NodeCount returns the number of loaded nodes
func (g *Graph) NodeCount() int {
	return len(g.nodesByID)
}

// EdgeCount returns the number of loaded raw edges
func (g *Graph) EdgeCount() int {
	return len(g.rawEdges)
}

// UpdatedAt returns when the graph last changed
func (g *Graph) UpdatedAt() time.Time {
	return g.updatedAt
}

// Replace atomically discards the prior graph and installs the new one.
// Used for a full-graph load, a brand-new ego load, a re-center and a
// depth change. Node attributes are last-write-wins here.
func (g *Graph) Replace(nodes []*entities.Node, edges []entities.RawEdge) {
	g.nodesByID = make(map[valueobjects.NodeID]*entities.Node, len(nodes))
	for _, n := range nodes {
		g.nodesByID[n.ID()] = n
	}

	g.rawEdges = make(map[entities.EdgeKey]entities.RawEdge, len(edges))
	for _, e := range edges {
		g.rawEdges[e.Key()] = e
	}

	g.generation++
	g.updatedAt = time.Now()
	g.addEvent(events.NewGraphReplaced(g.generation, len(g.nodesByID), len(g.rawEdges), g.updatedAt))
}

// Merge unions the given nodes and edges into the graph. A node already
// present by ID keeps its existing attributes; an edge already present by
// its composite key is skipped. Returns what was actually added so the
// caller can do its own bookkeeping (e.g. unhiding freshly revealed
// neighbors). Merging the same payload twice is a no-op the second time.
func (g *Graph) Merge(nodes []*entities.Node, edges []entities.RawEdge) (addedNodes []*entities.Node, addedEdges []entities.RawEdge) {
	for _, n := range nodes {
		if _, exists := g.nodesByID[n.ID()]; exists {
			continue
		}
		g.nodesByID[n.ID()] = n
		addedNodes = append(addedNodes, n)
	}

	for _, e := range edges {
		if _, exists := g.rawEdges[e.Key()]; exists {
			continue
		}
		g.rawEdges[e.Key()] = e
		addedEdges = append(addedEdges, e)
	}

	if len(addedNodes) > 0 || len(addedEdges) > 0 {
		g.generation++
		g.updatedAt = time.Now()
		g.addEvent(events.NewGraphMerged(g.generation, len(addedNodes), len(addedEdges), g.updatedAt))
	}

	return addedNodes, addedEdges
}

// GetNode retrieves a node by ID; the second return value reports presence
func (g *Graph) GetNode(id valueobjects.NodeID) (*entities.Node, bool) {
	n, ok := g.nodesByID[id]
	return n, ok
}

// HasNode checks if a node is loaded
func (g *Graph) HasNode(id valueobjects.NodeID) bool {
	_, ok := g.nodesByID[id]
	return ok
}

// Nodes returns all loaded nodes
func (g *Graph) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(g.nodesByID))
	for _, n := range g.nodesByID {
		nodes = append(nodes, n)
	}
	return nodes
}

// RawEdges returns all loaded raw edges
func (g *Graph) RawEdges() []entities.RawEdge {
	edges := make([]entities.RawEdge, 0, len(g.rawEdges))
	for _, e := range g.rawEdges {
		edges = append(edges, e)
	}
	return edges
}

// IncidentEdges returns all raw edges touching the given node
func (g *Graph) IncidentEdges(id valueobjects.NodeID) []entities.RawEdge {
	var incident []entities.RawEdge
	for _, e := range g.rawEdges {
		if e.Touches(id) {
			incident = append(incident, e)
		}
	}
	return incident
}

// NeighborIDs returns the distinct ids of nodes sharing an edge with the
// given node, excluding the node itself
func (g *Graph) NeighborIDs(id valueobjects.NodeID) []valueobjects.NodeID {
	seen := make(map[valueobjects.NodeID]struct{})
	var neighbors []valueobjects.NodeID
	for _, e := range g.rawEdges {
		if !e.Touches(id) {
			continue
		}
		other := e.OtherEnd(id)
		if other.Equals(id) {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		neighbors = append(neighbors, other)
	}
	return neighbors
}

// GetUncommittedEvents returns all uncommitted domain events
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(g.events))
	copy(out, g.events)
	return out
}

// MarkEventsAsCommitted clears the uncommitted events
func (g *Graph) MarkEventsAsCommitted() {
	g.events = []events.DomainEvent{}
}

func (g *Graph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}
