package queries

// GetSnapshotQuery requests the full renderable exploration state
type GetSnapshotQuery struct{}

// Validate implements the query contract
func (GetSnapshotQuery) Validate() error { return nil }

// SnapshotResult is the wire shape of the exploration state
type SnapshotResult struct {
	Mode        string            `json:"mode"`
	CenterID    string            `json:"center_id,omitempty"`
	HopDepth    int               `json:"hop_depth"`
	Generation  uint64            `json:"generation"`
	Loading     bool              `json:"loading"`
	Nodes       []SnapshotNodeDTO `json:"nodes"`
	Edges       []SnapshotEdgeDTO `json:"edges"`
	HiddenCount int               `json:"hidden_count"`
	Highlight   *HighlightDTO     `json:"highlight,omitempty"`
	TypeFilter  map[string]bool   `json:"type_filter"`
}

// SnapshotNodeDTO is one renderable node
type SnapshotNodeDTO struct {
	ID                string       `json:"id"`
	Type              string       `json:"type"`
	Label             string       `json:"label"`
	RelationshipCount int          `json:"relationship_count"`
	Position          *PositionDTO `json:"position,omitempty"`
	HasMore           bool         `json:"has_more,omitempty"`
}

// SnapshotEdgeDTO is one aggregated edge between a node pair
type SnapshotEdgeDTO struct {
	SourceID           string   `json:"source_id"`
	TargetID           string   `json:"target_id"`
	RepresentativeType string   `json:"representative_type,omitempty"`
	Label              string   `json:"label"`
	Multiplicity       int      `json:"multiplicity"`
	Relations          []string `json:"relations"`
}

// PositionDTO is a settled layout position
type PositionDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HighlightDTO describes the current selection emphasis
type HighlightDTO struct {
	NodeID   string `json:"node_id,omitempty"`
	SourceID string `json:"source_id,omitempty"`
	TargetID string `json:"target_id,omitempty"`
}
