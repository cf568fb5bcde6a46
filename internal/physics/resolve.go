package physics

import (
	"math"
	"sync/atomic"

	"sentinel/internal/geom"
)

var (
	rayCasts    atomic.Uint64
	resolutions atomic.Uint64
)

// Counters returns process-wide raycast and resolution totals for metrics.
func Counters() (raycasts, resolved uint64) {
	return rayCasts.Load(), resolutions.Load()
}

// Overlap returns the displacement that moves a out of b.
// Circle-bearing pairs are supported; segment against segment never overlaps.
func Overlap(a, b Shape) (geom.Vec2, bool) {
	switch sa := a.(type) {
	case Circle:
		switch sb := b.(type) {
		case Circle:
			return circleCircle(sa, sb)
		case Segment:
			return circleSegment(sa, sb)
		case Compound:
			return deepest(a, sb.Parts, false)
		}
	case Segment:
		switch sb := b.(type) {
		case Circle:
			mtv, ok := circleSegment(sb, sa)
			return mtv.Neg(), ok
		case Compound:
			return deepest(a, sb.Parts, false)
		}
	case Compound:
		return deepest(b, sa.Parts, true)
	}
	return geom.Vec2{}, false
}

// deepest picks the largest correction between other and any part.
// When partsFirst is set the parts play the role of a.
func deepest(other Shape, parts []Shape, partsFirst bool) (geom.Vec2, bool) {
	var best geom.Vec2
	found := false
	for _, p := range parts {
		var mtv geom.Vec2
		var ok bool
		if partsFirst {
			mtv, ok = Overlap(p, other)
		} else {
			mtv, ok = Overlap(other, p)
		}
		if ok && (!found || mtv.LengthSq() > best.LengthSq()) {
			best, found = mtv, true
		}
	}
	return best, found
}

func circleCircle(a, b Circle) (geom.Vec2, bool) {
	d := a.C.Sub(b.C)
	dist := d.Length()
	pen := a.R + b.R - dist
	if pen <= 0 {
		return geom.Vec2{}, false
	}
	dir := geom.V2(1, 0)
	if dist > 0 {
		dir = d.Scale(1 / dist)
	}
	return dir.Scale(pen), true
}

func circleSegment(c Circle, s Segment) (geom.Vec2, bool) {
	q := s.Closest(c.C)
	d := c.C.Sub(q)
	dist := d.Length()
	pen := c.R - dist
	if pen <= 0 {
		return geom.Vec2{}, false
	}
	var dir geom.Vec2
	if dist > 1e-12 {
		dir = d.Scale(1 / dist)
	} else {
		// Centre exactly on the line: push along the segment normal
		e := s.B.Sub(s.A).Normalize()
		dir = geom.V2(-e.Y, e.X)
		if dir.IsZero() {
			dir = geom.V2(1, 0)
		}
	}
	return dir.Scale(pen), true
}

// Resolve separates a from b when they overlap.
//
// Both listeners are asked first; a nil listener agrees, and either refusal
// leaves the pair untouched. A static side takes no correction, the other takes
// all of it; two dynamic colliders split it. Both listeners then get
// OnResolution.
func Resolve(a, b *Collider) bool {
	if a.Static && b.Static {
		return false
	}
	mtv, ok := Overlap(a.Shape, b.Shape)
	if !ok || mtv.LengthSq() < 1e-18 || math.IsNaN(mtv.X) {
		return false
	}

	agreeA := a.Listener == nil || a.Listener.OnCollision(a, b)
	agreeB := b.Listener == nil || b.Listener.OnCollision(b, a)
	if !agreeA || !agreeB {
		return false
	}

	switch {
	case b.Static:
		a.Move(mtv)
	case a.Static:
		b.Move(mtv.Neg())
	default:
		half := mtv.Scale(0.5)
		a.Move(half)
		b.Move(half.Neg())
	}
	resolutions.Add(1)

	if a.Listener != nil {
		a.Listener.OnResolution(a, b)
	}
	if b.Listener != nil {
		b.Listener.OnResolution(b, a)
	}
	return true
}
