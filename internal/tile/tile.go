// Package tile classifies map tile codes and describes a tile's
// neighbourhood for pathfinding and wall/door geometry.
package tile

// Code is the structural content of a tile.
type Code int

const (
	Floor Code = iota
	Wall
	Door  // semisolid: collidable, blocks path search
	Glass // solid pane
	Crate // semisolid obstacle
)

// IsSolid reports whether the tile blocks movement and rays outright.
func (c Code) IsSolid() bool {
	return c == Wall || c == Glass
}

// IsSemisolid reports whether the tile is passable geometry that still collides.
func (c Code) IsSemisolid() bool {
	return c == Door || c == Crate
}

// IsWalkable reports whether path search may step onto the tile.
// Doors are semisolid to physics but still excluded here.
func (c Code) IsWalkable() bool {
	return !c.IsSolid() && !c.IsSemisolid()
}

func (c Code) String() string {
	switch c {
	case Floor:
		return "floor"
	case Wall:
		return "wall"
	case Door:
		return "door"
	case Glass:
		return "glass"
	case Crate:
		return "crate"
	default:
		return "unknown"
	}
}

// Function is a functional marker layered on top of a tile code.
type Function int

const (
	FuncNone Function = iota
	FuncLockRed
	FuncLockGreen
	FuncLockBlue
	FuncPlayerStart
	FuncDroneSpawn
	FuncTurretSpawn
	FuncFocus
)

// IsLock reports whether the marker is one of the lock variants.
func (f Function) IsLock() bool {
	return f == FuncLockRed || f == FuncLockGreen || f == FuncLockBlue
}

// Coord is an integer tile coordinate on the X/Z grid.
type Coord struct {
	X int `json:"x" msgpack:"x"`
	Z int `json:"z" msgpack:"z"`
}

// C is shorthand for Coord{x, z}.
func C(x, z int) Coord { return Coord{X: x, Z: z} }

func (c Coord) Add(o Coord) Coord { return Coord{c.X + o.X, c.Z + o.Z} }

// Offsets4 lists the four axis neighbours in a fixed order: +X, -X, +Z, -Z.
var Offsets4 = [4]Coord{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Neighbors4 returns the axis-aligned neighbours in Offsets4 order.
func (c Coord) Neighbors4() [4]Coord {
	var out [4]Coord
	for i, o := range Offsets4 {
		out[i] = c.Add(o)
	}
	return out
}

// Manhattan returns |dx| + |dz|.
func (c Coord) Manhattan(o Coord) int {
	return abs(c.X-o.X) + abs(c.Z-o.Z)
}

// Adjacent reports whether o is one axis step away.
func (c Coord) Adjacent(o Coord) bool { return c.Manhattan(o) == 1 }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
