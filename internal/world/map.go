// Package world holds the pre-loaded map: tiles, rooms, static geometry, the
// tracked player and transient effects.
package world

import (
	"math"

	"sentinel/internal/geom"
	"sentinel/internal/tile"
)

// DefaultTileSize is the world width of one tile.
const DefaultTileSize = 1.0

// Spawn is a marker the layout placed on a tile.
type Spawn struct {
	Kind  tile.Function `json:"kind"`
	Coord tile.Coord    `json:"coord"`
	Room  int           `json:"room"`
}

// Map is a width x depth tile grid partitioned into rooms.
type Map struct {
	width, depth int
	tileSize     float64
	tiles        []tile.Code
	funcs        []tile.Function
	roomOf       []int
	rooms        []*Room
	spawns       []Spawn
}

func newMap(width, depth int, tileSize float64) *Map {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	n := width * depth
	m := &Map{
		width:    width,
		depth:    depth,
		tileSize: tileSize,
		tiles:    make([]tile.Code, n),
		funcs:    make([]tile.Function, n),
		roomOf:   make([]int, n),
	}
	for i := range m.roomOf {
		m.roomOf[i] = tile.NoRoom
	}
	return m
}

func (m *Map) Width() int        { return m.width }
func (m *Map) Depth() int        { return m.depth }
func (m *Map) TileSize() float64 { return m.tileSize }

// InBounds reports whether c lies on the grid.
func (m *Map) InBounds(c tile.Coord) bool {
	return c.X >= 0 && c.Z >= 0 && c.X < m.width && c.Z < m.depth
}

func (m *Map) index(c tile.Coord) int { return c.Z*m.width + c.X }

// TileAt returns the code at c. Everything off the grid is wall.
func (m *Map) TileAt(c tile.Coord) tile.Code {
	if !m.InBounds(c) {
		return tile.Wall
	}
	return m.tiles[m.index(c)]
}

// FunctionAt returns the functional marker at c.
func (m *Map) FunctionAt(c tile.Coord) tile.Function {
	if !m.InBounds(c) {
		return tile.FuncNone
	}
	return m.funcs[m.index(c)]
}

// RoomIndex returns the room owning c, or tile.NoRoom.
func (m *Map) RoomIndex(c tile.Coord) int {
	if !m.InBounds(c) {
		return tile.NoRoom
	}
	return m.roomOf[m.index(c)]
}

// RoomAt returns the room owning c, or nil.
func (m *Map) RoomAt(c tile.Coord) *Room {
	return m.Room(m.RoomIndex(c))
}

// Room returns the room with the given id, or nil.
func (m *Map) Room(id int) *Room {
	if id < 0 || id >= len(m.rooms) {
		return nil
	}
	return m.rooms[id]
}

// Rooms returns every room in id order.
func (m *Map) Rooms() []*Room { return m.rooms }

// Spawns returns the spawn markers in layout order.
func (m *Map) Spawns() []Spawn { return m.spawns }

// Environment bundles c with its four neighbours.
func (m *Map) Environment(c tile.Coord) tile.Environment {
	return tile.Environment{
		Self:     m.TileAt(c),
		PosX:     m.TileAt(c.Add(tile.C(1, 0))),
		NegX:     m.TileAt(c.Add(tile.C(-1, 0))),
		PosZ:     m.TileAt(c.Add(tile.C(0, 1))),
		NegZ:     m.TileAt(c.Add(tile.C(0, -1))),
		Room:     m.RoomIndex(c),
		Function: m.FunctionAt(c),
	}
}

// TileToWorld returns the world position of a tile's centre.
func (m *Map) TileToWorld(c tile.Coord) geom.Vec2 {
	return geom.V2((float64(c.X)+0.5)*m.tileSize, (float64(c.Z)+0.5)*m.tileSize)
}

// WorldToTile returns the tile containing p.
func (m *Map) WorldToTile(p geom.Vec2) tile.Coord {
	return tile.C(int(math.Floor(p.X/m.tileSize)), int(math.Floor(p.Y/m.tileSize)))
}

// Bounds returns the map size in world units.
func (m *Map) Bounds() (width, depth float64) {
	return float64(m.width) * m.tileSize, float64(m.depth) * m.tileSize
}
