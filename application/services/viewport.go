package services

import (
	"go.uber.org/zap"

	"graphexplorer/application/ports"
	"graphexplorer/domain/core/valueobjects"
)

// CameraOp identifies the kind of camera movement a command requests
type CameraOp string

const (
	// CameraFit frames the given bounds in the viewport
	CameraFit CameraOp = "fit"
	// CameraCenter places the given point at the viewport center
	CameraCenter CameraOp = "center"
	// CameraPan animates the viewport toward the given point without
	// changing zoom
	CameraPan CameraOp = "pan"
)

// CameraCommand is one instruction for the rendering layer's camera
type CameraCommand struct {
	Op         CameraOp              `json:"op"`
	Target     valueobjects.Position `json:"target,omitempty"`
	Bounds     valueobjects.Bounds   `json:"bounds,omitempty"`
	Generation uint64                `json:"generation"`
}

// Viewport decides when a settled layout should move the camera and
// where to. The camera auto-moves at most once per graph generation:
// the first settle after a mutation frames the new content, later
// settles of the same generation leave the camera wherever the user
// put it.
type Viewport struct {
	appliedGen uint64
	hasApplied bool
	logger     *zap.Logger
}

// NewViewport creates a viewport coordinator with no applied generation
func NewViewport(logger *zap.Logger) *Viewport {
	return &Viewport{logger: logger}
}

// OnLayoutSettled maps a settled layout to an optional camera command.
// Results for a generation other than the current one are leftovers of
// a superseded layout run and are dropped; results for an
// already-framed generation are re-settles and keep the camera still.
// In ego mode the camera centers on the ego center, in full mode it
// fits the whole layout.
func (v *Viewport) OnLayoutSettled(result ports.LayoutResult, currentGen uint64, mode Mode, centerID valueobjects.NodeID) (*CameraCommand, bool) {
	if result.Generation != currentGen {
		v.logger.Debug("Dropping layout result for superseded generation",
			zap.Uint64("resultGen", result.Generation),
			zap.Uint64("currentGen", currentGen),
		)
		return nil, false
	}
	if v.hasApplied && result.Generation == v.appliedGen {
		return nil, false
	}
	if len(result.Positions) == 0 {
		return nil, false
	}

	v.appliedGen = result.Generation
	v.hasApplied = true

	if mode == ModeEgo {
		if pos, ok := result.Positions[centerID]; ok {
			return &CameraCommand{
				Op:         CameraCenter,
				Target:     pos,
				Generation: result.Generation,
			}, true
		}
		// Center missing from the layout; framing everything is the
		// least surprising fallback.
	}

	positions := make([]valueobjects.Position, 0, len(result.Positions))
	for _, p := range result.Positions {
		positions = append(positions, p)
	}
	bounds, ok := valueobjects.BoundsOf(positions)
	if !ok {
		return nil, false
	}
	return &CameraCommand{
		Op:         CameraFit,
		Bounds:     bounds,
		Generation: result.Generation,
	}, true
}

// PanTo produces a camera command panning to a single point. Used for
// explicit focus requests; it does not consume the per-generation
// auto-frame.
func (v *Viewport) PanTo(target valueobjects.Position, currentGen uint64) *CameraCommand {
	return &CameraCommand{
		Op:         CameraPan,
		Target:     target,
		Generation: currentGen,
	}
}

// Reset forgets the applied generation so the next settle frames the
// camera again even for a generation number seen before. Called when a
// new graph is installed.
func (v *Viewport) Reset() {
	v.hasApplied = false
	v.appliedGen = 0
}
