package handlers

import (
	"context"

	"go.uber.org/zap"

	"graphexplorer/application/queries"
	"graphexplorer/application/queries/bus"
	"graphexplorer/application/services"
	"graphexplorer/domain/core/valueobjects"
	"graphexplorer/pkg/errors"
)

// ExplorationQueryHandler serves read queries from the engine façade
type ExplorationQueryHandler struct {
	engine *services.Engine
	logger *zap.Logger
}

// NewExplorationQueryHandler creates a new handler instance
func NewExplorationQueryHandler(engine *services.Engine, logger *zap.Logger) *ExplorationQueryHandler {
	return &ExplorationQueryHandler{engine: engine, logger: logger}
}

// Register wires every exploration query type into the bus
func (h *ExplorationQueryHandler) Register(b *bus.QueryBus) error {
	if err := b.Register(queries.GetSnapshotQuery{}, bus.QueryHandlerFunc(h.handleGetSnapshot)); err != nil {
		return err
	}
	return b.Register(queries.GetNodeDetailsQuery{}, bus.QueryHandlerFunc(h.handleGetNodeDetails))
}

func (h *ExplorationQueryHandler) handleGetSnapshot(ctx context.Context, q bus.Query) (interface{}, error) {
	return MapSnapshot(h.engine.Snapshot()), nil
}

func (h *ExplorationQueryHandler) handleGetNodeDetails(ctx context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.GetNodeDetailsQuery)
	id, err := valueobjects.NewNodeID(query.NodeID)
	if err != nil {
		return nil, err
	}

	node, hidden, expanded, ok := h.engine.NodeInfo(id)
	if !ok {
		return nil, errors.NewNotFoundError("node " + query.NodeID)
	}

	snap := h.engine.Snapshot()
	connections := make([]queries.SnapshotEdgeDTO, 0)
	visibleEdges := 0
	for _, ve := range snap.Edges {
		if !ve.SourceID.Equals(id) && !ve.TargetID.Equals(id) {
			continue
		}
		connections = append(connections, mapEdge(ve))
		visibleEdges += ve.Multiplicity
	}

	return &queries.NodeDetailsResult{
		Node: queries.SnapshotNodeDTO{
			ID:                node.ID().String(),
			Type:              string(node.Type()),
			Label:             node.Label(),
			RelationshipCount: node.TotalRelationshipCount(),
		},
		Connections:  connections,
		VisibleEdges: visibleEdges,
		Hidden:       hidden,
		Expanded:     expanded,
	}, nil
}

// MapSnapshot converts the engine snapshot into its wire shape
func MapSnapshot(snap services.Snapshot) *queries.SnapshotResult {
	result := &queries.SnapshotResult{
		Mode:        string(snap.Mode),
		HopDepth:    snap.HopDepth,
		Generation:  snap.Generation,
		Loading:     snap.Loading,
		Nodes:       make([]queries.SnapshotNodeDTO, 0, len(snap.Nodes)),
		Edges:       make([]queries.SnapshotEdgeDTO, 0, len(snap.Edges)),
		HiddenCount: snap.HiddenCount,
		TypeFilter:  make(map[string]bool, len(snap.TypeFilter)),
	}
	for t, visible := range snap.TypeFilter {
		result.TypeFilter[string(t)] = visible
	}
	if !snap.CenterID.IsZero() {
		result.CenterID = snap.CenterID.String()
	}

	for _, sn := range snap.Nodes {
		dto := queries.SnapshotNodeDTO{
			ID:                sn.Node.ID().String(),
			Type:              string(sn.Node.Type()),
			Label:             sn.Node.Label(),
			RelationshipCount: sn.Node.TotalRelationshipCount(),
			HasMore:           sn.HasMore,
		}
		if sn.Position != nil {
			dto.Position = &queries.PositionDTO{X: sn.Position.X, Y: sn.Position.Y}
		}
		result.Nodes = append(result.Nodes, dto)
	}

	for _, ve := range snap.Edges {
		result.Edges = append(result.Edges, mapEdge(ve))
	}

	if !snap.Highlight.IsZero() {
		hl := &queries.HighlightDTO{}
		if !snap.Highlight.NodeID.IsZero() {
			hl.NodeID = snap.Highlight.NodeID.String()
		}
		if snap.Highlight.Edge != nil {
			source, target := snap.Highlight.Edge.Endpoints()
			hl.SourceID = source.String()
			hl.TargetID = target.String()
		}
		result.Highlight = hl
	}

	return result
}

func mapEdge(ve queries.VisualEdge) queries.SnapshotEdgeDTO {
	relations := make([]string, 0, len(ve.Members))
	for _, member := range ve.Members {
		relations = append(relations, member.RelationType)
	}
	return queries.SnapshotEdgeDTO{
		SourceID:           ve.SourceID.String(),
		TargetID:           ve.TargetID.String(),
		RepresentativeType: ve.RepresentativeType,
		Label:              ve.Label,
		Multiplicity:       ve.Multiplicity,
		Relations:          relations,
	}
}
