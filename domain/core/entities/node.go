package entities

import (
	"fmt"

	"graphexplorer/domain/core/valueobjects"
	pkgerrors "graphexplorer/pkg/errors"
)

// NodeType classifies an entity in the graph. The set is fixed by the
// graph service; the engine treats it as closed.
type NodeType string

const (
	TypePerson  NodeType = "person"
	TypeProject NodeType = "project"
	TypeGoal    NodeType = "goal"
	TypeEvent   NodeType = "event"
	TypeNote    NodeType = "note"
	TypePeriod  NodeType = "period"
)

// AllNodeTypes lists every known node type, in display order
func AllNodeTypes() []NodeType {
	return []NodeType{TypePerson, TypeProject, TypeGoal, TypeEvent, TypeNote, TypePeriod}
}

// IsValid reports whether the type is one of the known kinds
func (t NodeType) IsValid() bool {
	switch t {
	case TypePerson, TypeProject, TypeGoal, TypeEvent, TypeNote, TypePeriod:
		return true
	}
	return false
}

// Node is an entity in the exploration graph. Identity is the NodeID;
// type is immutable once created. TotalRelationshipCount is the true
// server-side degree and is used to detect that only part of a node's
// neighborhood is loaded client-side.
type Node struct {
	id                     valueobjects.NodeID
	nodeType               NodeType
	label                  string
	totalRelationshipCount int
}

// NewNode creates a node with validation
func NewNode(id valueobjects.NodeID, nodeType NodeType, label string, totalRelationshipCount int) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if !nodeType.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown node type %q", nodeType))
	}
	if totalRelationshipCount < 0 {
		return nil, pkgerrors.NewValidationError("relationship count cannot be negative")
	}
	return &Node{
		id:                     id,
		nodeType:               nodeType,
		label:                  label,
		totalRelationshipCount: totalRelationshipCount,
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Type returns the node's type
func (n *Node) Type() NodeType {
	return n.nodeType
}

// Label returns the display label
func (n *Node) Label() string {
	return n.label
}

// TotalRelationshipCount returns the server-side degree of the node
func (n *Node) TotalRelationshipCount() int {
	return n.totalRelationshipCount
}

// HasHiddenRelationships reports whether the node has more relationships
// server-side than the given number of locally visible incident edges.
// Only meaningful in ego mode; a full-graph load is assumed complete.
func (n *Node) HasHiddenRelationships(visibleIncidentEdges int) bool {
	return n.totalRelationshipCount > visibleIncidentEdges
}
