// Package layout snaps map coordinates to the editing grid and keeps node
// cards from overlapping.
package layout

import "math"

// GridSize is the snapping unit for every committed position.
const GridSize = 8

// Point is a position in map space.
type Point struct {
	X float64
	Y float64
}

// Add returns p shifted by dx, dy.
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Snap rounds each axis to the nearest multiple of GridSize. Halves round
// towards positive infinity.
func Snap(p Point) Point {
	return Point{X: snapAxis(p.X), Y: snapAxis(p.Y)}
}

func snapAxis(v float64) float64 {
	s := math.Floor(v/GridSize+0.5) * GridSize
	if s == 0 {
		// normalise negative zero
		return 0
	}
	return s
}

// MaxCoordinate bounds both axes of a stored position. Documents with a
// coordinate outside [-MaxCoordinate, MaxCoordinate] do not validate.
const MaxCoordinate = 1_000_000

// InRange reports whether v is a finite coordinate within MaxCoordinate.
func InRange(v float64) bool {
	return !math.IsNaN(v) && v >= -MaxCoordinate && v <= MaxCoordinate
}

// Clamp pulls each axis of p into the coordinate range. NaN becomes 0.
func Clamp(p Point) Point {
	return Point{X: clampAxis(p.X), Y: clampAxis(p.Y)}
}

func clampAxis(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-MaxCoordinate, math.Min(MaxCoordinate, v))
}
