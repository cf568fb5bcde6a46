package tile

// Axis names a grid axis.
type Axis int

const (
	AxisX Axis = iota
	AxisZ
)

// Face names one side of a tile.
type Face int

const (
	FacePosX Face = iota
	FaceNegX
	FacePosZ
	FaceNegZ
)

// NoRoom is the room index of tiles that belong to no room (walls, doors).
const NoRoom = -1

// Environment bundles a tile with its four axis neighbours.
type Environment struct {
	Self     Code
	PosX     Code
	NegX     Code
	PosZ     Code
	NegZ     Code
	Room     int
	Function Function
}

// Neighbor returns the code on the given face.
func (e Environment) Neighbor(f Face) Code {
	switch f {
	case FacePosX:
		return e.PosX
	case FaceNegX:
		return e.NegX
	case FacePosZ:
		return e.PosZ
	default:
		return e.NegZ
	}
}

// DoorAxis returns the axis a door panel spans. A door framed by solid tiles
// on ±X spans X; otherwise it spans Z.
func (e Environment) DoorAxis() Axis {
	if e.PosX.IsSolid() || e.NegX.IsSolid() {
		return AxisX
	}
	return AxisZ
}

// ExposedFaces returns the faces of a solid tile that border non-solid tiles,
// i.e. the wall faces an entity can touch.
func (e Environment) ExposedFaces() []Face {
	if !e.Self.IsSolid() {
		return nil
	}
	faces := make([]Face, 0, 4)
	for _, f := range []Face{FacePosX, FaceNegX, FacePosZ, FaceNegZ} {
		if !e.Neighbor(f).IsSolid() {
			faces = append(faces, f)
		}
	}
	return faces
}
