package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphexplorer/application/ports"
	"graphexplorer/domain/core/valueobjects"
)

func layoutResult(gen uint64, positions map[string]valueobjects.Position) ports.LayoutResult {
	out := ports.LayoutResult{
		Generation: gen,
		Positions:  make(map[valueobjects.NodeID]valueobjects.Position, len(positions)),
	}
	for id, pos := range positions {
		out.Positions[valueobjects.MustNodeID(id)] = pos
	}
	return out
}

func TestViewportFullModeFitsBounds(t *testing.T) {
	v := NewViewport(zap.NewNop())

	cmd, ok := v.OnLayoutSettled(layoutResult(3, map[string]valueobjects.Position{
		"a": {X: -10, Y: 0},
		"b": {X: 30, Y: 40},
		"c": {X: 10, Y: -20},
	}), 3, ModeFull, valueobjects.NodeID{})

	require.True(t, ok)
	assert.Equal(t, CameraFit, cmd.Op)
	assert.Equal(t, float64(-10), cmd.Bounds.MinX)
	assert.Equal(t, float64(30), cmd.Bounds.MaxX)
	assert.Equal(t, float64(-20), cmd.Bounds.MinY)
	assert.Equal(t, float64(40), cmd.Bounds.MaxY)
}

func TestViewportEgoModeCentersOnCenter(t *testing.T) {
	v := NewViewport(zap.NewNop())

	cmd, ok := v.OnLayoutSettled(layoutResult(1, map[string]valueobjects.Position{
		"center": {X: 5, Y: 7},
		"other":  {X: 100, Y: 100},
	}), 1, ModeEgo, valueobjects.MustNodeID("center"))

	require.True(t, ok)
	assert.Equal(t, CameraCenter, cmd.Op)
	assert.Equal(t, valueobjects.Position{X: 5, Y: 7}, cmd.Target)
}

func TestViewportEgoModeMissingCenterFallsBackToFit(t *testing.T) {
	v := NewViewport(zap.NewNop())

	cmd, ok := v.OnLayoutSettled(layoutResult(1, map[string]valueobjects.Position{
		"other": {X: 100, Y: 100},
	}), 1, ModeEgo, valueobjects.MustNodeID("center"))

	require.True(t, ok)
	assert.Equal(t, CameraFit, cmd.Op)
}

func TestViewportDropsSupersededGeneration(t *testing.T) {
	v := NewViewport(zap.NewNop())

	_, ok := v.OnLayoutSettled(layoutResult(2, map[string]valueobjects.Position{
		"a": {X: 1, Y: 1},
	}), 5, ModeFull, valueobjects.NodeID{})

	assert.False(t, ok, "a settle for an old generation must not move the camera")
}

func TestViewportFramesEachGenerationOnce(t *testing.T) {
	v := NewViewport(zap.NewNop())
	result := layoutResult(4, map[string]valueobjects.Position{"a": {X: 1, Y: 1}})

	_, ok := v.OnLayoutSettled(result, 4, ModeFull, valueobjects.NodeID{})
	require.True(t, ok)

	// A physics re-settle of the same generation keeps the camera where
	// the user left it.
	_, ok = v.OnLayoutSettled(result, 4, ModeFull, valueobjects.NodeID{})
	assert.False(t, ok)

	// The next mutation frames again.
	_, ok = v.OnLayoutSettled(layoutResult(5, map[string]valueobjects.Position{"a": {X: 2, Y: 2}}), 5, ModeFull, valueobjects.NodeID{})
	assert.True(t, ok)
}

func TestViewportResetReframes(t *testing.T) {
	v := NewViewport(zap.NewNop())
	result := layoutResult(1, map[string]valueobjects.Position{"a": {X: 1, Y: 1}})

	_, ok := v.OnLayoutSettled(result, 1, ModeFull, valueobjects.NodeID{})
	require.True(t, ok)

	v.Reset()
	_, ok = v.OnLayoutSettled(result, 1, ModeFull, valueobjects.NodeID{})
	assert.True(t, ok, "after a reset the same generation frames again")
}

func TestViewportEmptyLayoutNoCommand(t *testing.T) {
	v := NewViewport(zap.NewNop())

	_, ok := v.OnLayoutSettled(layoutResult(1, nil), 1, ModeFull, valueobjects.NodeID{})
	assert.False(t, ok)
}

func TestViewportPanTo(t *testing.T) {
	v := NewViewport(zap.NewNop())

	cmd := v.PanTo(valueobjects.Position{X: 3, Y: 4}, 9)
	assert.Equal(t, CameraPan, cmd.Op)
	assert.Equal(t, valueobjects.Position{X: 3, Y: 4}, cmd.Target)
	assert.Equal(t, uint64(9), cmd.Generation)
}
