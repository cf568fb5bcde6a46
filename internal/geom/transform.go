package geom

// Transform is an entity's position, yaw and scale with a cached model matrix.
// Setters mark the cache dirty; Model recomputes it on the next read.
type Transform struct {
	position Vec3
	yaw      float64
	scale    Vec3

	dirty bool
	model Mat4
}

// NewTransform creates a unit-scale transform at position with the given yaw.
func NewTransform(position Vec3, yaw float64) Transform {
	return Transform{
		position: position,
		yaw:      WrapDegrees(yaw),
		scale:    Vec3{1, 1, 1},
		dirty:    true,
	}
}

func (t *Transform) Position() Vec3 { return t.position }

// Planar returns the position projected onto the physics plane.
func (t *Transform) Planar() Vec2 { return t.position.XZ() }

// Yaw returns the heading in degrees, [0, 360).
func (t *Transform) Yaw() float64 { return t.yaw }

func (t *Transform) Scale() Vec3 { return t.scale }

func (t *Transform) SetPosition(p Vec3) {
	t.position = p
	t.dirty = true
}

// SetPlanar moves on the physics plane, keeping height.
func (t *Transform) SetPlanar(p Vec2) {
	t.SetPosition(Vec3{p.X, t.position.Y, p.Y})
}

func (t *Transform) SetYaw(deg float64) {
	t.yaw = WrapDegrees(deg)
	t.dirty = true
}

func (t *Transform) SetScale(s Vec3) {
	t.scale = s
	t.dirty = true
}

// Forward returns the planar unit heading.
func (t *Transform) Forward() Vec2 { return FromBearing(t.yaw) }

// Dirty reports whether the cached matrix is stale.
func (t *Transform) Dirty() bool { return t.dirty }

// Model returns translation * rotation * scale, recomputing only when dirty.
func (t *Transform) Model() Mat4 {
	if t.dirty {
		t.model = Translation(t.position).Mul(RotationY(t.yaw)).Mul(Scaling(t.scale))
		t.dirty = false
	}
	return t.model
}
