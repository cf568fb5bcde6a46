// Package physics implements the 2D collider model, layer-filtered raycasts
// and minimum-translation collision resolution on the XZ plane.
package physics

import "strings"

// Layer tags a collider for filtering.
type Layer uint8

const (
	Solid Layer = iota
	Semisolid
	Enemy
	Player
	Item
	RaycastOnly
	layerCount
)

func (l Layer) String() string {
	switch l {
	case Solid:
		return "solid"
	case Semisolid:
		return "semisolid"
	case Enemy:
		return "enemy"
	case Player:
		return "player"
	case Item:
		return "item"
	case RaycastOnly:
		return "raycast"
	default:
		return "unknown"
	}
}

// MarshalText lets layers appear by name in JSON snapshots.
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// LayerSet is a bitmask of layers.
type LayerSet uint8

// Of builds a set from layers.
func Of(layers ...Layer) LayerSet {
	var s LayerSet
	for _, l := range layers {
		s |= 1 << l
	}
	return s
}

// Has reports whether l is in the set.
func (s LayerSet) Has(l Layer) bool { return s&(1<<l) != 0 }

// With returns the set plus l.
func (s LayerSet) With(l Layer) LayerSet { return s | 1<<l }

func (s LayerSet) String() string {
	names := make([]string, 0, layerCount)
	for l := Layer(0); l < layerCount; l++ {
		if s.Has(l) {
			names = append(names, l.String())
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Sight filters shared by line-of-sight checks and weapon fire.
var (
	SightTerminate = Of(Player, Solid)
	SightExclude   = Of(Enemy)
)
