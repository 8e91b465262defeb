package valueobjects

import "math"

// Position is a 2D coordinate produced by the layout engine.
// The engine reads positions but never computes them itself.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a new position
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Midpoint returns the point halfway between two positions
func (p Position) Midpoint(other Position) Position {
	return Position{
		X: (p.X + other.X) / 2,
		Y: (p.Y + other.Y) / 2,
	}
}

// DistanceTo returns the euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Bounds is an axis-aligned bounding box over a set of positions
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// BoundsOf computes the bounding box of the given positions.
// The second return value is false when the input is empty.
func BoundsOf(positions []Position) (Bounds, bool) {
	if len(positions) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinX: positions[0].X, MaxX: positions[0].X,
		MinY: positions[0].Y, MaxY: positions[0].Y,
	}
	for _, p := range positions[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b, true
}

// Center returns the center point of the bounds
func (b Bounds) Center() Position {
	return Position{
		X: (b.MinX + b.MaxX) / 2,
		Y: (b.MinY + b.MaxY) / 2,
	}
}

// Width returns the horizontal extent
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }
