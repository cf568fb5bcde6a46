package physics

import "sentinel/internal/physics/spatial"

// World is the collider registry of one room. It implements Scope.
//
// Not safe for concurrent use: the owning simulation serialises Add/Remove
// against queries.
type World struct {
	colliders []*Collider
	grid      *spatial.Grid
	pairs     []uint32
}

// NewWorld creates a registry whose broad phase covers width x depth units.
func NewWorld(width, depth, cellSize float64) *World {
	return &World{
		colliders: make([]*Collider, 0, 64),
		grid:      spatial.NewGrid(width, depth, cellSize, 64),
		pairs:     make([]uint32, 0, 16),
	}
}

// Add registers c. Adding the same collider twice is a no-op.
func (w *World) Add(c *Collider) {
	for _, existing := range w.colliders {
		if existing == c {
			return
		}
	}
	w.colliders = append(w.colliders, c)
}

// Remove deregisters c, preserving the order of the rest.
func (w *World) Remove(c *Collider) bool {
	for i, existing := range w.colliders {
		if existing == c {
			w.colliders = append(w.colliders[:i], w.colliders[i+1:]...)
			return true
		}
	}
	return false
}

// Colliders returns the registered colliders in registration order.
func (w *World) Colliders() []*Collider { return w.colliders }

// Len returns the number of registered colliders.
func (w *World) Len() int { return len(w.colliders) }

// ResolveAll runs one broad-phase + narrow-phase pass and returns the number
// of corrected pairs.
func (w *World) ResolveAll() int {
	w.grid.Clear()
	for i, c := range w.colliders {
		min, max := c.Shape.Bounds()
		w.grid.InsertBounds(uint32(i), min, max)
	}

	resolved := 0
	for i, c := range w.colliders {
		if c.Static {
			continue
		}
		min, max := c.Shape.Bounds()
		w.pairs = append(w.pairs[:0], w.grid.QueryBounds(min, max)...)
		for _, j := range w.pairs {
			if int(j) == i {
				continue
			}
			other := w.colliders[j]
			// Dynamic pairs are visited from the lower index only
			if !other.Static && int(j) < i {
				continue
			}
			if Resolve(c, other) {
				resolved++
			}
		}
	}
	return resolved
}

// BroadPhase reports how the last ResolveAll pass filled the grid.
func (w *World) BroadPhase() spatial.GridStats { return w.grid.Stats() }
