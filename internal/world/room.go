package world

import (
	"sentinel/internal/geom"
	"sentinel/internal/physics"
	"sentinel/internal/tile"
)

// Room is one connected region of the map. It implements path.Grid and
// physics.Scope.
type Room struct {
	ID int

	m       *Map
	tiles   []tile.Coord
	patrol  []tile.Coord
	focus   []geom.Vec2
	player  *Player
	physics *physics.World
	static  []*physics.Collider
	effects []*Effect
}

func newRoom(id int, m *Map) *Room {
	w, d := m.Bounds()
	return &Room{
		ID:      id,
		m:       m,
		physics: physics.NewWorld(w, d, m.tileSize*2),
	}
}

// Map returns the containing map.
func (r *Room) Map() *Map { return r.m }

// Contains reports whether c belongs to the room.
func (r *Room) Contains(c tile.Coord) bool { return r.m.RoomIndex(c) == r.ID }

// Walkable reports whether path search may enter c: inside the room and
// neither solid nor semisolid.
func (r *Room) Walkable(c tile.Coord) bool {
	return r.Contains(c) && r.m.TileAt(c).IsWalkable()
}

// Tiles returns the room's tiles in scan order.
func (r *Room) Tiles() []tile.Coord { return r.tiles }

// PatrolRoute returns the ordered patrol tiles.
func (r *Room) PatrolRoute() []tile.Coord { return r.patrol }

// FocusPoints returns the points idle enemies glance at.
func (r *Room) FocusPoints() []geom.Vec2 { return r.focus }

// Player returns the tracked player, or nil when the player is elsewhere.
func (r *Room) Player() *Player { return r.player }

// SetPlayer tracks p (nil to clear) and moves its collider with it.
func (r *Room) SetPlayer(p *Player) {
	if r.player == p {
		return
	}
	if r.player != nil {
		r.physics.Remove(r.player.Collider())
	}
	r.player = p
	if p != nil {
		r.physics.Add(p.Collider())
	}
}

// Physics returns the room's collider registry.
func (r *Room) Physics() *physics.World { return r.physics }

// Colliders implements physics.Scope.
func (r *Room) Colliders() []*physics.Collider { return r.physics.Colliders() }

// StaticColliders returns the wall, door and crate geometry.
func (r *Room) StaticColliders() []*physics.Collider { return r.static }

// AddCollider registers an entity's collider.
func (r *Room) AddCollider(c *physics.Collider) { r.physics.Add(c) }

// RemoveCollider deregisters an entity's collider.
func (r *Room) RemoveCollider(c *physics.Collider) { r.physics.Remove(c) }

// buildGeometry creates static colliders: a wall segment on every solid face
// bordering the room, a semisolid panel across every adjacent door, and a box
// around each crate.
func (r *Room) buildGeometry() {
	ts := r.m.tileSize
	for z := 0; z < r.m.depth; z++ {
		for x := 0; x < r.m.width; x++ {
			c := tile.C(x, z)
			env := r.m.Environment(c)
			x0, z0 := float64(x)*ts, float64(z)*ts
			x1, z1 := x0+ts, z0+ts

			switch {
			case env.Self.IsSolid():
				for _, f := range env.ExposedFaces() {
					if !r.Contains(c.Add(faceOffset(f))) {
						continue
					}
					r.addStatic(faceSegment(f, x0, z0, x1, z1), physics.Solid)
				}
			case env.Self == tile.Door:
				if !r.touches(c) {
					continue
				}
				mid := r.m.TileToWorld(c)
				var seg physics.Segment
				if env.DoorAxis() == tile.AxisX {
					seg = physics.Segment{A: geom.V2(x0, mid.Y), B: geom.V2(x1, mid.Y)}
				} else {
					seg = physics.Segment{A: geom.V2(mid.X, z0), B: geom.V2(mid.X, z1)}
				}
				r.addStatic(seg, physics.Semisolid)
			case env.Self == tile.Crate && r.Contains(c):
				box := physics.Compound{Parts: []physics.Shape{
					physics.Segment{A: geom.V2(x0, z0), B: geom.V2(x1, z0)},
					physics.Segment{A: geom.V2(x1, z0), B: geom.V2(x1, z1)},
					physics.Segment{A: geom.V2(x1, z1), B: geom.V2(x0, z1)},
					physics.Segment{A: geom.V2(x0, z1), B: geom.V2(x0, z0)},
				}}
				r.addStatic(box, physics.Semisolid)
			}
		}
	}
}

func (r *Room) addStatic(s physics.Shape, layer physics.Layer) {
	c := physics.NewStatic(s, layer)
	r.static = append(r.static, c)
	r.physics.Add(c)
}

// touches reports whether any axis neighbour of c is in the room.
func (r *Room) touches(c tile.Coord) bool {
	for _, n := range c.Neighbors4() {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

func faceOffset(f tile.Face) tile.Coord {
	switch f {
	case tile.FacePosX:
		return tile.C(1, 0)
	case tile.FaceNegX:
		return tile.C(-1, 0)
	case tile.FacePosZ:
		return tile.C(0, 1)
	default:
		return tile.C(0, -1)
	}
}

func faceSegment(f tile.Face, x0, z0, x1, z1 float64) physics.Segment {
	switch f {
	case tile.FacePosX:
		return physics.Segment{A: geom.V2(x1, z0), B: geom.V2(x1, z1)}
	case tile.FaceNegX:
		return physics.Segment{A: geom.V2(x0, z0), B: geom.V2(x0, z1)}
	case tile.FacePosZ:
		return physics.Segment{A: geom.V2(x0, z1), B: geom.V2(x1, z1)}
	default:
		return physics.Segment{A: geom.V2(x0, z0), B: geom.V2(x1, z0)}
	}
}
