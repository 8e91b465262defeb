package entities

import (
	"graphexplorer/domain/core/valueobjects"
	pkgerrors "graphexplorer/pkg/errors"
)

// RawEdge is one directed relationship record as stored by the graph
// service. Multiple raw edges may connect the same two nodes with
// different relation types.
type RawEdge struct {
	SourceID     valueobjects.NodeID `json:"source_id"`
	TargetID     valueobjects.NodeID `json:"target_id"`
	RelationType string              `json:"relation_type"`
}

// EdgeKey is the composite identity of a raw edge. Two fetches returning
// the same relationship produce the same key, which is what makes merges
// idempotent.
type EdgeKey struct {
	Source   string
	Target   string
	Relation string
}

// NewRawEdge creates a raw edge with validation
func NewRawEdge(sourceID, targetID valueobjects.NodeID, relationType string) (RawEdge, error) {
	if sourceID.IsZero() || targetID.IsZero() {
		return RawEdge{}, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}
	if relationType == "" {
		return RawEdge{}, pkgerrors.NewValidationError("relation type cannot be empty")
	}
	return RawEdge{SourceID: sourceID, TargetID: targetID, RelationType: relationType}, nil
}

// Key returns the edge's composite identity
func (e RawEdge) Key() EdgeKey {
	return EdgeKey{
		Source:   e.SourceID.String(),
		Target:   e.TargetID.String(),
		Relation: e.RelationType,
	}
}

// PairKey returns the unordered key of the edge's endpoints
func (e RawEdge) PairKey() valueobjects.PairKey {
	return valueobjects.NewPairKey(e.SourceID, e.TargetID)
}

// Touches reports whether the edge is incident to the given node
func (e RawEdge) Touches(id valueobjects.NodeID) bool {
	return e.SourceID.Equals(id) || e.TargetID.Equals(id)
}

// OtherEnd returns the endpoint opposite to the given node. For
// self-loops it returns the node itself.
func (e RawEdge) OtherEnd(id valueobjects.NodeID) valueobjects.NodeID {
	if e.SourceID.Equals(id) {
		return e.TargetID
	}
	return e.SourceID
}
