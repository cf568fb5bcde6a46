package physics

import (
	"sync/atomic"

	"sentinel/internal/geom"
)

// Listener receives collision callbacks for the entity a collider stands for.
//
// OnCollision decides: returning false leaves the pair overlapping (items,
// raycast-only volumes). OnResolution runs after positional correction so the
// entity can copy the corrected collider position into its own transform.
type Listener interface {
	OnCollision(self, other *Collider) bool
	OnResolution(self, other *Collider)
}

var colliderSeq atomic.Uint64

// Collider is a shape tagged with a layer. It notifies, but never owns, the
// entity behind Listener.
type Collider struct {
	id       uint64
	Shape    Shape
	Layer    Layer
	Listener Listener
	// Static colliders are never moved by resolution.
	Static bool
}

// NewCollider creates a dynamic collider.
func NewCollider(shape Shape, layer Layer, listener Listener) *Collider {
	return &Collider{
		id:       colliderSeq.Add(1),
		Shape:    shape,
		Layer:    layer,
		Listener: listener,
	}
}

// NewStatic creates a collider that resolution never moves.
func NewStatic(shape Shape, layer Layer) *Collider {
	c := NewCollider(shape, layer, nil)
	c.Static = true
	return c
}

// ID is unique for the process lifetime.
func (c *Collider) ID() uint64 { return c.id }

// Position returns the shape's anchor.
func (c *Collider) Position() geom.Vec2 { return c.Shape.Center() }

// SetPosition moves the shape so its anchor sits at p.
func (c *Collider) SetPosition(p geom.Vec2) {
	c.Shape = c.Shape.Translate(p.Sub(c.Shape.Center()))
}

// Move translates the shape by d.
func (c *Collider) Move(d geom.Vec2) {
	c.Shape = c.Shape.Translate(d)
}
