package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"graphexplorer/application/commands"
	"graphexplorer/application/commands/bus"
	"graphexplorer/application/services"
	"graphexplorer/domain/core/entities"
	"graphexplorer/domain/core/valueobjects"
)

// ExplorationHandler maps exploration commands onto the engine façade
type ExplorationHandler struct {
	engine *services.Engine
	logger *zap.Logger
}

// NewExplorationHandler creates a new handler instance
func NewExplorationHandler(engine *services.Engine, logger *zap.Logger) *ExplorationHandler {
	return &ExplorationHandler{engine: engine, logger: logger}
}

// Register wires every exploration command type into the bus
func (h *ExplorationHandler) Register(b *bus.CommandBus) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandlerFunc
	}{
		{commands.LoadGraphCommand{}, h.handleLoad},
		{commands.EnterEgoCommand{}, h.handleEnterEgo},
		{commands.ExitEgoCommand{}, h.handleExitEgo},
		{commands.SetHopDepthCommand{}, h.handleSetHopDepth},
		{commands.ExpandNodeCommand{}, h.handleExpandNode},
		{commands.HideNodeCommand{}, h.handleHideNode},
		{commands.UnhideAllCommand{}, h.handleUnhideAll},
		{commands.SetTypeFilterCommand{}, h.handleSetTypeFilter},
		{commands.FocusNodeCommand{}, h.handleFocusNode},
		{commands.FocusEdgeCommand{}, h.handleFocusEdge},
		{commands.ClickNodeCommand{}, h.handleClickNode},
		{commands.ClickEdgeCommand{}, h.handleClickEdge},
		{commands.HoverCommand{}, h.handleHover},
		{commands.ClearHighlightCommand{}, h.handleClearHighlight},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func (h *ExplorationHandler) handleLoad(ctx context.Context, cmd bus.Command) error {
	h.engine.Load()
	return nil
}

func (h *ExplorationHandler) handleEnterEgo(ctx context.Context, cmd bus.Command) error {
	c := cmd.(commands.EnterEgoCommand)
	id, err := valueobjects.NewNodeID(c.NodeID)
	if err != nil {
		return err
	}
	return h.engine.EnterEgo(id)
}

func (h *ExplorationHandler) handleExitEgo(ctx context.Context, cmd bus.Command) error {
	h.engine.ExitEgo()
	return nil
}

func (h *ExplorationHandler) handleSetHopDepth(ctx context.Context, cmd bus.Command) error {
	c := cmd.(commands.SetHopDepthCommand)
	return h.engine.SetHopDepth(c.Depth)
}

func (h *ExplorationHandler) handleExpandNode(ctx context.Context, cmd bus.Command) error {
	c := cmd.(commands.ExpandNodeCommand)
	id, err := valueobjects.NewNodeID(c.NodeID)
	if err != nil {
		return err
	}
	return h.engine.ExpandNode(id)
}

func (h *ExplorationHandler) handleHideNode(ctx context.Context, cmd bus.Command) error {
	c := cmd.(commands.HideNodeCommand)
	id, err := valueobjects.NewNodeID(c.NodeID)
	if err != nil {
		return err
	}
	h.engine.HideNode(id)
	return nil
}

func (h *ExplorationHandler) handleUnhideAll(ctx context.Context, cmd bus.Command) error {
	h.engine.UnhideAll()
	return nil
}

func (h *ExplorationHandler) handleSetTypeFilter(ctx context.Context, cmd bus.Command) error {
	c := cmd.(commands.SetTypeFilterCommand)
	h.engine.SetTypeVisible(entities.NodeType(c.NodeType), c.Visible)
	return nil
}

func (h *ExplorationHandler) handleFocusNode(ctx context.Context, cmd bus.Command) error {
	c := cmd.(commands.FocusNodeCommand)
	id, err := valueobjects.NewNodeID(c.NodeID)
	if err != nil {
		return err
	}
	h.engine.FocusNode(id)
	return nil
}

func (h *ExplorationHandler) handleFocusEdge(ctx context.Context, cmd bus.Command) error {
	c := cmd.(commands.FocusEdgeCommand)
	a, b, err := edgeEndpoints(c.SourceID, c.TargetID)
	if err != nil {
		return err
	}
	h.engine.FocusEdge(a, b)
	return nil
}

func (h *ExplorationHandler) handleClickNode(ctx context.Context, cmd bus.Command) error {
	c := cmd.(commands.ClickNodeCommand)
	id, err := valueobjects.NewNodeID(c.NodeID)
	if err != nil {
		return err
	}
	h.engine.Click(id)
	return nil
}

func (h *ExplorationHandler) handleClickEdge(ctx context.Context, cmd bus.Command) error {
	c := cmd.(commands.ClickEdgeCommand)
	a, b, err := edgeEndpoints(c.SourceID, c.TargetID)
	if err != nil {
		return err
	}
	h.engine.ClickEdge(a, b)
	return nil
}

func (h *ExplorationHandler) handleHover(ctx context.Context, cmd bus.Command) error {
	c := cmd.(commands.HoverCommand)
	if c.Leave {
		h.engine.HoverLeave()
		return nil
	}
	id, err := valueobjects.NewNodeID(c.NodeID)
	if err != nil {
		return err
	}
	h.engine.HoverEnter(id)
	return nil
}

func (h *ExplorationHandler) handleClearHighlight(ctx context.Context, cmd bus.Command) error {
	h.engine.ClearHighlight()
	return nil
}

func edgeEndpoints(source, target string) (valueobjects.NodeID, valueobjects.NodeID, error) {
	a, err := valueobjects.NewNodeID(source)
	if err != nil {
		return valueobjects.NodeID{}, valueobjects.NodeID{}, fmt.Errorf("source: %w", err)
	}
	b, err := valueobjects.NewNodeID(target)
	if err != nil {
		return valueobjects.NodeID{}, valueobjects.NodeID{}, fmt.Errorf("target: %w", err)
	}
	return a, b, nil
}
