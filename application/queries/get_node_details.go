package queries

import (
	"github.com/go-playground/validator/v10"

	"graphexplorer/pkg/errors"
)

var queryValidate = validator.New()

// GetNodeDetailsQuery requests one node with its visible connections,
// as shown in the hover detail panel
type GetNodeDetailsQuery struct {
	NodeID string `json:"node_id" validate:"required"`
}

// Validate implements the query contract
func (q GetNodeDetailsQuery) Validate() error {
	if err := queryValidate.Struct(q); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

// NodeDetailsResult is the hover detail payload for one node
type NodeDetailsResult struct {
	Node         SnapshotNodeDTO   `json:"node"`
	Connections  []SnapshotEdgeDTO `json:"connections"`
	VisibleEdges int               `json:"visible_edges"`
	Hidden       bool              `json:"hidden"`
	Expanded     bool              `json:"expanded"`
}
