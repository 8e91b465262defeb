package commands

import (
	"github.com/go-playground/validator/v10"

	"graphexplorer/domain/core/entities"
	"graphexplorer/pkg/errors"
)

var validate = validator.New()

func validateStruct(cmd interface{}) error {
	if err := validate.Struct(cmd); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

// LoadGraphCommand requests the initial (or a refreshed) full-graph load
type LoadGraphCommand struct{}

// Validate implements the command contract
func (LoadGraphCommand) Validate() error { return nil }

// EnterEgoCommand focuses the exploration on one node's neighborhood.
// Issued both for entering ego mode and for re-centering within it.
type EnterEgoCommand struct {
	NodeID string `json:"node_id" validate:"required"`
}

// Validate implements the command contract
func (c EnterEgoCommand) Validate() error { return validateStruct(c) }

// ExitEgoCommand returns to the full graph
type ExitEgoCommand struct{}

// Validate implements the command contract
func (ExitEgoCommand) Validate() error { return nil }

// SetHopDepthCommand changes the ego neighborhood radius
type SetHopDepthCommand struct {
	Depth int `json:"depth" validate:"min=1,max=5"`
}

// Validate implements the command contract
func (c SetHopDepthCommand) Validate() error { return validateStruct(c) }

// ExpandNodeCommand merges one on-screen node's immediate neighborhood
type ExpandNodeCommand struct {
	NodeID string `json:"node_id" validate:"required"`
}

// Validate implements the command contract
func (c ExpandNodeCommand) Validate() error { return validateStruct(c) }

// HideNodeCommand removes one node from the ego view
type HideNodeCommand struct {
	NodeID string `json:"node_id" validate:"required"`
}

// Validate implements the command contract
func (c HideNodeCommand) Validate() error { return validateStruct(c) }

// UnhideAllCommand restores every manually hidden node
type UnhideAllCommand struct{}

// Validate implements the command contract
func (UnhideAllCommand) Validate() error { return nil }

// SetTypeFilterCommand toggles visibility of an entire node type
type SetTypeFilterCommand struct {
	NodeType string `json:"node_type" validate:"required"`
	Visible  bool   `json:"visible"`
}

// Validate implements the command contract
func (c SetTypeFilterCommand) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if !entities.NodeType(c.NodeType).IsValid() {
		return errors.NewValidationError("unknown node type: " + c.NodeType)
	}
	return nil
}

// FocusNodeCommand pans the camera to a node and highlights it
type FocusNodeCommand struct {
	NodeID string `json:"node_id" validate:"required"`
}

// Validate implements the command contract
func (c FocusNodeCommand) Validate() error { return validateStruct(c) }

// FocusEdgeCommand pans the camera to the edge between two nodes and
// highlights it
type FocusEdgeCommand struct {
	SourceID string `json:"source_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

// Validate implements the command contract
func (c FocusEdgeCommand) Validate() error { return validateStruct(c) }

// ClickNodeCommand reports a raw pointer click on a node; the engine
// disambiguates it into a single or double click
type ClickNodeCommand struct {
	NodeID string `json:"node_id" validate:"required"`
}

// Validate implements the command contract
func (c ClickNodeCommand) Validate() error { return validateStruct(c) }

// ClickEdgeCommand reports a pointer click on an aggregated edge
type ClickEdgeCommand struct {
	SourceID string `json:"source_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

// Validate implements the command contract
func (c ClickEdgeCommand) Validate() error { return validateStruct(c) }

// HoverCommand reports a pointer hover transition. Leave true means the
// pointer left the current hover target.
type HoverCommand struct {
	NodeID string `json:"node_id"`
	Leave  bool   `json:"leave"`
}

// Validate implements the command contract
func (c HoverCommand) Validate() error {
	if !c.Leave && c.NodeID == "" {
		return errors.NewValidationError("node_id is required on hover enter")
	}
	return nil
}

// ClearHighlightCommand drops the current selection emphasis
type ClearHighlightCommand struct{}

// Validate implements the command contract
func (ClearHighlightCommand) Validate() error { return nil }
