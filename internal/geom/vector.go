// Package geom provides the small value types shared by physics, navigation
// and AI: 2D/3D vectors, a 4x4 matrix and a lazily cached transform.
//
// All vector methods use value receivers and return new values.
package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument marks programming errors such as nil targets or a zero divisor.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// Vec2 is a point or direction on the physics plane (world X, world Z).
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// V2 is shorthand for Vec2{x, y}.
func V2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale multiplies both components by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Neg returns -v.
func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }

// Div divides both components by s. A zero divisor is an invalid argument.
func (v Vec2) Div(s float64) (Vec2, error) {
	if s == 0 {
		return Vec2{}, fmt.Errorf("vec2 divide by zero: %w", ErrInvalidArgument)
	}
	return Vec2{v.X / s, v.Y / s}, nil
}

// Dot returns the dot product.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the 3D cross product of (v,0) and (o,0).
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

// LengthSq returns the squared magnitude.
func (v Vec2) LengthSq() float64 { return v.X*v.X + v.Y*v.Y }

// Length returns the magnitude.
func (v Vec2) Length() float64 { return math.Sqrt(v.LengthSq()) }

// Distance returns |v - o|.
func (v Vec2) Distance(o Vec2) float64 { return v.Sub(o).Length() }

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Normalize returns the unit vector in v's direction.
// The zero vector normalizes to the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rotate rotates v counter-clockwise about the origin by deg degrees.
func (v Vec2) Rotate(deg float64) Vec2 {
	s, c := math.Sincos(deg * degToRad)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// AngleBetween returns the unsigned angle to o in degrees, in [0, 180].
// If either vector has zero length the angle is 0.
func (v Vec2) AngleBetween(o Vec2) float64 {
	a, b := v.Normalize(), o.Normalize()
	if a.IsZero() || b.IsZero() {
		return 0
	}
	return math.Acos(clamp(a.Dot(b), -1, 1)) * radToDeg
}

// Bearing returns the direction of v in degrees, wrapped to [0, 360).
func (v Vec2) Bearing() float64 {
	return WrapDegrees(math.Atan2(v.Y, v.X) * radToDeg)
}

// Lerp interpolates between v and o by t.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// XZ lifts v back into 3D at height y.
func (v Vec2) XZ(y float64) Vec3 { return Vec3{v.X, y, v.Y} }

// FromBearing returns the unit vector pointing at deg degrees.
func FromBearing(deg float64) Vec2 {
	s, c := math.Sincos(deg * degToRad)
	return Vec2{c, s}
}

// WrapDegrees maps any angle into [0, 360).
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// AngleDiff returns the shortest signed rotation from a to b in degrees, in (-180, 180].
func AngleDiff(a, b float64) float64 {
	d := WrapDegrees(b - a)
	if d > 180 {
		d -= 360
	}
	return d
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
