package queries

import (
	"fmt"
	"sort"

	"graphexplorer/domain/core/aggregates"
	"graphexplorer/domain/core/entities"
	"graphexplorer/domain/core/valueobjects"
)

// ViewState is the ephemeral filter state driving what is visible.
// It is independent of what is loaded: hiding a node never removes it
// from the graph store.
type ViewState struct {
	VisibleTypes  map[entities.NodeType]bool
	HiddenNodeIDs map[valueobjects.NodeID]struct{}
	EgoMode       bool
}

// NewViewState creates a view state with all types visible and nothing hidden
func NewViewState() ViewState {
	types := make(map[entities.NodeType]bool, len(entities.AllNodeTypes()))
	for _, t := range entities.AllNodeTypes() {
		types[t] = true
	}
	return ViewState{
		VisibleTypes:  types,
		HiddenNodeIDs: make(map[valueobjects.NodeID]struct{}),
	}
}

// NodeVisible applies the visibility rule for a single node: its type must
// be toggled on, and in ego mode it must not be manually hidden. Manual
// hides are ignored in full mode.
func (v ViewState) NodeVisible(n *entities.Node) bool {
	if !v.VisibleTypes[n.Type()] {
		return false
	}
	if v.EgoMode {
		if _, hidden := v.HiddenNodeIDs[n.ID()]; hidden {
			return false
		}
	}
	return true
}

// VisibleGraph is the filtered view of the graph store
type VisibleGraph struct {
	Nodes    []*entities.Node
	RawEdges []entities.RawEdge
}

// ComputeVisible derives the visible subgraph from the store and the view
// state. A raw edge is visible iff both endpoints are visible nodes. Pure:
// no side effects, invariant under reordering of the stored edges.
func ComputeVisible(g *aggregates.Graph, view ViewState) VisibleGraph {
	visibleIDs := make(map[valueobjects.NodeID]struct{})
	var nodes []*entities.Node
	for _, n := range g.Nodes() {
		if view.NodeVisible(n) {
			visibleIDs[n.ID()] = struct{}{}
			nodes = append(nodes, n)
		}
	}

	var edges []entities.RawEdge
	for _, e := range g.RawEdges() {
		if _, ok := visibleIDs[e.SourceID]; !ok {
			continue
		}
		if _, ok := visibleIDs[e.TargetID]; !ok {
			continue
		}
		edges = append(edges, e)
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID().String() < nodes[j].ID().String()
	})
	sort.Slice(edges, func(i, j int) bool {
		ki, kj := edges[i].Key(), edges[j].Key()
		if ki.Source != kj.Source {
			return ki.Source < kj.Source
		}
		if ki.Target != kj.Target {
			return ki.Target < kj.Target
		}
		return ki.Relation < kj.Relation
	})

	return VisibleGraph{Nodes: nodes, RawEdges: edges}
}

// VisibleIncidentEdgeCount counts visible raw edges touching the node.
// Compared against the node's server-side degree to decide whether the
// expand affordance is shown.
func (vg VisibleGraph) VisibleIncidentEdgeCount(id valueobjects.NodeID) int {
	count := 0
	for _, e := range vg.RawEdges {
		if e.Touches(id) {
			count++
		}
	}
	return count
}

// VisualEdge is the rendering-level aggregation of all raw edges between
// an unordered node pair. It is derived state, never persisted.
type VisualEdge struct {
	PairKey            valueobjects.PairKey `json:"-"`
	SourceID           valueobjects.NodeID  `json:"source_id"`
	TargetID           valueobjects.NodeID  `json:"target_id"`
	RepresentativeType string               `json:"representative_type,omitempty"`
	Label              string               `json:"label"`
	Multiplicity       int                  `json:"multiplicity"`
	Members            []entities.RawEdge   `json:"members"`
}

// AggregateEdges groups the visible raw edges by unordered pair and emits
// one visual edge per pair. With a single member the visual edge carries
// that edge's relation type as both representative type and label; with
// more it carries a "<N> relationships" label and no representative type,
// leaving the individual relations reachable through Members. Grouping is
// independent of input order.
func AggregateEdges(edges []entities.RawEdge) []VisualEdge {
	groups := make(map[valueobjects.PairKey][]entities.RawEdge)
	for _, e := range edges {
		key := e.PairKey()
		groups[key] = append(groups[key], e)
	}

	visual := make([]VisualEdge, 0, len(groups))
	for key, members := range groups {
		sort.Slice(members, func(i, j int) bool {
			ki, kj := members[i].Key(), members[j].Key()
			if ki.Relation != kj.Relation {
				return ki.Relation < kj.Relation
			}
			return ki.Source < kj.Source
		})

		source, target := key.Endpoints()
		ve := VisualEdge{
			PairKey:      key,
			SourceID:     source,
			TargetID:     target,
			Multiplicity: len(members),
			Members:      members,
		}
		if len(members) == 1 {
			ve.RepresentativeType = members[0].RelationType
			ve.Label = members[0].RelationType
		} else {
			ve.Label = fmt.Sprintf("%d relationships", len(members))
		}
		visual = append(visual, ve)
	}

	sort.Slice(visual, func(i, j int) bool {
		return visual[i].PairKey.String() < visual[j].PairKey.String()
	})
	return visual
}

// FindVisualEdge returns the visual edge between two nodes, if any.
// The lookup is unordered: (a,b) and (b,a) find the same edge.
func FindVisualEdge(visual []VisualEdge, a, b valueobjects.NodeID) (VisualEdge, bool) {
	want := valueobjects.NewPairKey(a, b)
	for _, ve := range visual {
		if ve.PairKey == want {
			return ve, true
		}
	}
	return VisualEdge{}, false
}
