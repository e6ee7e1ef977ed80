// Package curve provides a simple control-point curve mapping used to
// remap scalar factors in [0, 1].
package curve

import "sort"

// Point is a single curve control point.
type Point struct {
	X, Y float32
}

// Map evaluates a piecewise-linear curve defined by sorted control points.
// Input outside the control range clamps to the end points.
type Map struct {
	points []Point
}

// New creates a curve map from control points. Points are sorted by X.
// With fewer than two points the curve degenerates to identity.
func New(points ...Point) *Map {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return &Map{points: pts}
}

// Identity returns the curve mapping every input to itself.
func Identity() *Map {
	return New(Point{0, 0}, Point{1, 1})
}

// Points returns the control points in evaluation order.
func (m *Map) Points() []Point {
	return m.points
}

// Evaluate returns the curve value at x.
func (m *Map) Evaluate(x float32) float32 {
	if len(m.points) < 2 {
		return x
	}
	first := m.points[0]
	if x <= first.X {
		return first.Y
	}
	last := m.points[len(m.points)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 1; i < len(m.points); i++ {
		p := m.points[i]
		if x > p.X {
			continue
		}
		prev := m.points[i-1]
		span := p.X - prev.X
		if span == 0 {
			return p.Y
		}
		t := (x - prev.X) / span
		return prev.Y + t*(p.Y-prev.Y)
	}
	return last.Y
}
