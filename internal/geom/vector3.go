package geom

import (
	"fmt"
	"math"
)

// Vec3 is a world-space position or direction. Y is up.
type Vec3 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3         { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3         { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3    { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64      { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) LengthSq() float64       { return v.Dot(v) }
func (v Vec3) Length() float64         { return math.Sqrt(v.LengthSq()) }
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Length() }

// Div divides every component by s. A zero divisor is an invalid argument.
func (v Vec3) Div(s float64) (Vec3, error) {
	if s == 0 {
		return Vec3{}, fmt.Errorf("vec3 divide by zero: %w", ErrInvalidArgument)
	}
	return Vec3{v.X / s, v.Y / s, v.Z / s}, nil
}

// Cross returns v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns the unit vector in v's direction, or zero for the zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// AngleBetween returns the unsigned angle to o in degrees, in [0, 180].
func (v Vec3) AngleBetween(o Vec3) float64 {
	a, b := v.Normalize(), o.Normalize()
	if a.LengthSq() == 0 || b.LengthSq() == 0 {
		return 0
	}
	return math.Acos(clamp(a.Dot(b), -1, 1)) * radToDeg
}

// RotateY rotates v about the vertical axis by deg degrees, matching Vec2.Rotate on XZ.
func (v Vec3) RotateY(deg float64) Vec3 {
	r := v.XZ().Rotate(deg)
	return Vec3{r.X, v.Y, r.Y}
}

// XZ projects v onto the physics plane.
func (v Vec3) XZ() Vec2 { return Vec2{v.X, v.Z} }
