package physics

import (
	"fmt"
	"sort"

	"sentinel/internal/geom"
)

// Scope supplies the colliders a query may see, in registration order.
type Scope interface {
	Colliders() []*Collider
}

// Hit is one ray intersection.
type Hit struct {
	Point    geom.Vec2
	Distance float64
	Collider *Collider
}

// Raycast returns every collider the ray touches within maxDist, nearest first.
//
// Colliders on exclude layers are never reported. The scan stops at the first
// hit on a terminate layer, which is the last element. Equal distances keep
// registration order. dir need not be unit length but must be non-zero.
func Raycast(origin, dir geom.Vec2, maxDist float64, scope Scope, terminate, exclude LayerSet) ([]Hit, error) {
	if scope == nil {
		return nil, fmt.Errorf("raycast without scope: %w", geom.ErrInvalidArgument)
	}
	unit := dir.Normalize()
	if unit.IsZero() {
		return nil, fmt.Errorf("raycast with zero direction: %w", geom.ErrInvalidArgument)
	}
	if maxDist <= 0 {
		return nil, nil
	}
	rayCasts.Add(1)

	var candidates []Hit
	for _, c := range scope.Colliders() {
		if exclude.Has(c.Layer) {
			continue
		}
		t, ok := c.Shape.RayEntry(origin, unit, maxDist)
		if !ok {
			continue
		}
		candidates = append(candidates, Hit{
			Point:    origin.Add(unit.Scale(t)),
			Distance: t,
			Collider: c,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	for i, h := range candidates {
		if terminate.Has(h.Collider.Layer) {
			return candidates[:i+1], nil
		}
	}
	return candidates, nil
}

// Sees reports whether a sight ray ended on the player.
func Sees(hits []Hit) bool {
	return len(hits) > 0 && hits[len(hits)-1].Collider.Layer == Player
}
