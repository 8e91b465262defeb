package layout

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"graphexplorer/application/ports"
	"graphexplorer/domain/core/valueobjects"
)

// StaticEngine is a deterministic layout oracle for headless operation
// and tests. Nodes go onto concentric rings ordered by ID, spaced by the
// requested node spacing; the result is stable for a given node set. A
// force-directed engine implementing the same port replaces it when the
// host embeds a real renderer.
type StaticEngine struct {
	logger *zap.Logger
}

// NewStaticEngine creates a static layout engine
func NewStaticEngine(logger *zap.Logger) *StaticEngine {
	return &StaticEngine{logger: logger}
}

var _ ports.LayoutEngine = (*StaticEngine)(nil)

// Run computes positions and reports them settled. The callback runs on
// its own goroutine; callers may hold locks across Run.
func (s *StaticEngine) Run(req ports.LayoutRequest, settled func(ports.LayoutResult)) {
	go func() {
		result := ports.LayoutResult{
			Generation: req.Generation,
			Positions:  s.place(req),
		}
		s.logger.Debug("Static layout settled",
			zap.Uint64("generation", req.Generation),
			zap.Int("nodes", len(result.Positions)),
		)
		settled(result)
	}()
}

func (s *StaticEngine) place(req ports.LayoutRequest) map[valueobjects.NodeID]valueobjects.Position {
	spacing := req.NodeSpacing
	if spacing <= 0 {
		spacing = 80
	}

	ids := make([]valueobjects.NodeID, 0, len(req.Nodes))
	for _, n := range req.Nodes {
		ids = append(ids, n.ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	positions := make(map[valueobjects.NodeID]valueobjects.Position, len(ids))
	if len(ids) == 0 {
		return positions
	}

	// First node at the origin, the rest on rings whose capacity grows
	// with circumference.
	positions[ids[0]] = valueobjects.Position{}
	remaining := ids[1:]
	ring := 1
	for len(remaining) > 0 {
		radius := float64(ring) * spacing
		capacity := int(math.Max(1, math.Floor(2*math.Pi*radius/spacing)))
		count := capacity
		if count > len(remaining) {
			count = len(remaining)
		}
		for i := 0; i < count; i++ {
			angle := 2 * math.Pi * float64(i) / float64(count)
			positions[remaining[i]] = valueobjects.Position{
				X: radius * math.Cos(angle),
				Y: radius * math.Sin(angle),
			}
		}
		remaining = remaining[count:]
		ring++
	}
	return positions
}
