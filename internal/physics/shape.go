package physics

import (
	"math"

	"sentinel/internal/geom"
)

// Shape is a collider outline on the physics plane.
// Shapes are values; Translate returns the moved copy.
type Shape interface {
	// Center is the anchor used by Collider.Position.
	Center() geom.Vec2
	Translate(d geom.Vec2) Shape
	Bounds() (min, max geom.Vec2)
	// RayEntry returns the distance along a unit ray at which it first touches
	// the shape. A ray starting inside a circle enters at 0.
	RayEntry(origin, dir geom.Vec2, maxDist float64) (float64, bool)
}

// Circle is a disc.
type Circle struct {
	C geom.Vec2
	R float64
}

func (c Circle) Center() geom.Vec2             { return c.C }
func (c Circle) Translate(d geom.Vec2) Shape   { return Circle{C: c.C.Add(d), R: c.R} }
func (c Circle) Bounds() (geom.Vec2, geom.Vec2) { return c.C.Sub(geom.V2(c.R, c.R)), c.C.Add(geom.V2(c.R, c.R)) }

func (c Circle) RayEntry(origin, dir geom.Vec2, maxDist float64) (float64, bool) {
	f := origin.Sub(c.C)
	b := f.Dot(dir)
	cc := f.LengthSq() - c.R*c.R
	disc := b*b - cc
	if disc < 0 {
		return 0, false
	}
	s := math.Sqrt(disc)
	t1, t2 := -b-s, -b+s
	if t2 < 0 {
		return 0, false
	}
	t := math.Max(t1, 0)
	if t > maxDist {
		return 0, false
	}
	return t, true
}

// Segment is a line between two endpoints, used for walls and door panels.
type Segment struct {
	A, B geom.Vec2
}

func (s Segment) Center() geom.Vec2           { return s.A.Lerp(s.B, 0.5) }
func (s Segment) Translate(d geom.Vec2) Shape { return Segment{A: s.A.Add(d), B: s.B.Add(d)} }

func (s Segment) Bounds() (geom.Vec2, geom.Vec2) {
	return geom.V2(math.Min(s.A.X, s.B.X), math.Min(s.A.Y, s.B.Y)),
		geom.V2(math.Max(s.A.X, s.B.X), math.Max(s.A.Y, s.B.Y))
}

// RayEntry ignores rays parallel to the segment.
func (s Segment) RayEntry(origin, dir geom.Vec2, maxDist float64) (float64, bool) {
	edge := s.B.Sub(s.A)
	denom := dir.Cross(edge)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	ao := s.A.Sub(origin)
	t := ao.Cross(edge) / denom
	u := ao.Cross(dir) / denom
	if t < 0 || t > maxDist || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// Closest returns the point on the segment nearest p.
func (s Segment) Closest(p geom.Vec2) geom.Vec2 {
	edge := s.B.Sub(s.A)
	l2 := edge.LengthSq()
	if l2 == 0 {
		return s.A
	}
	t := p.Sub(s.A).Dot(edge) / l2
	t = math.Max(0, math.Min(1, t))
	return s.A.Add(edge.Scale(t))
}

// Compound groups shapes that move together. Its anchor is the first part's centre.
type Compound struct {
	Parts []Shape
}

func (c Compound) Center() geom.Vec2 {
	if len(c.Parts) == 0 {
		return geom.Vec2{}
	}
	return c.Parts[0].Center()
}

func (c Compound) Translate(d geom.Vec2) Shape {
	parts := make([]Shape, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = p.Translate(d)
	}
	return Compound{Parts: parts}
}

func (c Compound) Bounds() (geom.Vec2, geom.Vec2) {
	if len(c.Parts) == 0 {
		return geom.Vec2{}, geom.Vec2{}
	}
	min, max := c.Parts[0].Bounds()
	for _, p := range c.Parts[1:] {
		pmin, pmax := p.Bounds()
		min = geom.V2(math.Min(min.X, pmin.X), math.Min(min.Y, pmin.Y))
		max = geom.V2(math.Max(max.X, pmax.X), math.Max(max.Y, pmax.Y))
	}
	return min, max
}

func (c Compound) RayEntry(origin, dir geom.Vec2, maxDist float64) (float64, bool) {
	best, hit := math.Inf(1), false
	for _, p := range c.Parts {
		if t, ok := p.RayEntry(origin, dir, maxDist); ok && t < best {
			best, hit = t, true
		}
	}
	return best, hit
}
