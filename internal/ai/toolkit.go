// Package ai drives enemy behaviour: targeting helpers, weapon timing and the
// drone and turret state machines.
package ai

import (
	"fmt"

	"sentinel/internal/geom"
	"sentinel/internal/physics"
	"sentinel/internal/world"
)

// Target is anything with a planar position.
type Target interface {
	Position() geom.Vec2
}

// Toolkit answers targeting questions from one viewpoint.
type Toolkit struct {
	Origin geom.Vec2
	Facing float64 // yaw in degrees
	Room   *world.Room
}

func checkTarget(t Target) error {
	if t == nil {
		return fmt.Errorf("nil target: %w", geom.ErrInvalidArgument)
	}
	if p, ok := t.(*world.Player); ok && p == nil {
		return fmt.Errorf("nil player: %w", geom.ErrInvalidArgument)
	}
	return nil
}

// DistanceTo returns the planar distance to t.
func (k Toolkit) DistanceTo(t Target) (float64, error) {
	if err := checkTarget(t); err != nil {
		return 0, err
	}
	return k.Origin.Distance(t.Position()), nil
}

// AngleTo returns the unsigned angle between the facing and the direction to
// t, in [0, 180].
func (k Toolkit) AngleTo(t Target) (float64, error) {
	if err := checkTarget(t); err != nil {
		return 0, err
	}
	return geom.FromBearing(k.Facing).AngleBetween(t.Position().Sub(k.Origin)), nil
}

// BearingTo returns the absolute bearing to t in [0, 360).
func (k Toolkit) BearingTo(t Target) (float64, error) {
	if err := checkTarget(t); err != nil {
		return 0, err
	}
	return t.Position().Sub(k.Origin).Bearing(), nil
}

// HasLineOfSight casts a sight ray at the room's tracked player.
func (k Toolkit) HasLineOfSight() (bool, error) {
	if k.Room == nil {
		return false, fmt.Errorf("line of sight without room: %w", geom.ErrInvalidArgument)
	}
	player := k.Room.Player()
	if player == nil {
		return false, fmt.Errorf("line of sight without player: %w", geom.ErrInvalidArgument)
	}
	delta := player.Position().Sub(k.Origin)
	if delta.IsZero() {
		return true, nil
	}
	hits, err := physics.Raycast(k.Origin, delta, delta.Length()+1, k.Room, physics.SightTerminate, physics.SightExclude)
	if err != nil {
		return false, err
	}
	return physics.Sees(hits), nil
}

// LookAtFade blends current toward target with inertia w:
// (target + w*current) / (w + 1), wrapped to [0, 360).
// The operands are unwrapped first so the blend takes the short way across
// the 0/360 seam.
func LookAtFade(current, target, w float64) float64 {
	current = geom.WrapDegrees(current)
	target = geom.WrapDegrees(target)
	if target-current > 180 {
		current += 360
	} else if current-target > 180 {
		target += 360
	}
	if w < 0 {
		w = 0
	}
	return geom.WrapDegrees((target + w*current) / (w + 1))
}
