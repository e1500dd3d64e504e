package model

// Facing is the 4-directional orientation of an entity on the tile grid.
type Facing uint8

const (
	FacingNorth Facing = iota
	FacingSouth
	FacingEast
	FacingWest
)

// String returns the wire-visible facing letter (N/S/E/W).
func (f Facing) String() string {
	switch f {
	case FacingNorth:
		return "N"
	case FacingSouth:
		return "S"
	case FacingEast:
		return "E"
	case FacingWest:
		return "W"
	default:
		return "N"
	}
}

// ParseFacing parses a wire facing letter back into a Facing.
func ParseFacing(s string) (Facing, bool) {
	switch s {
	case "N":
		return FacingNorth, true
	case "S":
		return FacingSouth, true
	case "E":
		return FacingEast, true
	case "W":
		return FacingWest, true
	default:
		return FacingNorth, false
	}
}

// Location is a tile position on a single map: integer tile coordinates,
// the owning map, and a facing direction. Value type, passed by value.
type Location struct {
	X      int32
	Y      int32
	MapID  string
	Facing Facing
}

// NewLocation creates a Location with the given coordinates.
func NewLocation(x, y int32, mapID string, facing Facing) Location {
	return Location{X: x, Y: y, MapID: mapID, Facing: facing}
}

// WithFacing returns a copy of l with an updated facing.
func (l Location) WithFacing(facing Facing) Location {
	l.Facing = facing
	return l
}

// WithCoordinates returns a copy of l with updated tile coordinates.
func (l Location) WithCoordinates(x, y int32) Location {
	l.X = x
	l.Y = y
	return l
}

// ManhattanDistance returns the 4-directional tile distance to other.
// Locations on different maps are not comparable; callers must check
// MapID themselves.
func (l Location) ManhattanDistance(other Location) int32 {
	dx := l.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := l.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// WithinChebyshev reports whether other is within range tiles of l on
// both axes (the square visible-range test from spec §4.9).
func (l Location) WithinChebyshev(other Location, rangeTiles int32) bool {
	dx := l.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := l.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return dx <= rangeTiles && dy <= rangeTiles
}
