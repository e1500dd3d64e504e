package geo

// LineIterator2D walks a 2D Bresenham line from start to end, one tile
// at a time, stepping along whichever axis has the larger delta.
type LineIterator2D struct {
	currentX, currentY int32
	targetX, targetY   int32
	deltaX, deltaY     int32
	stepX, stepY       int32
	err                int32
	dominant           int // 0=X, 1=Y
	started            bool
}

// NewLineIterator2D creates a Bresenham line iterator between two tiles.
func NewLineIterator2D(sx, sy, ex, ey int32) *LineIterator2D {
	it := &LineIterator2D{
		currentX: sx, currentY: sy,
		targetX: ex, targetY: ey,
	}
	it.deltaX = abs32(ex - sx)
	it.deltaY = abs32(ey - sy)

	if sx < ex {
		it.stepX = 1
	} else {
		it.stepX = -1
	}
	if sy < ey {
		it.stepY = 1
	} else {
		it.stepY = -1
	}

	if it.deltaX >= it.deltaY {
		it.dominant = 0
		it.err = it.deltaX / 2
	} else {
		it.dominant = 1
		it.err = it.deltaY / 2
	}
	return it
}

// Next advances the iterator to the next tile. Returns false once the
// target tile has already been yielded.
func (it *LineIterator2D) Next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.currentX == it.targetX && it.currentY == it.targetY {
		return false
	}
	switch it.dominant {
	case 0:
		it.currentX += it.stepX
		it.err += it.deltaY
		if it.err >= it.deltaX {
			it.currentY += it.stepY
			it.err -= it.deltaX
		}
	case 1:
		it.currentY += it.stepY
		it.err += it.deltaX
		if it.err >= it.deltaY {
			it.currentX += it.stepX
			it.err -= it.deltaY
		}
	}
	return true
}

// X returns the iterator's current X position.
func (it *LineIterator2D) X() int32 { return it.currentX }

// Y returns the iterator's current Y position.
func (it *LineIterator2D) Y() int32 { return it.currentY }

// HasLineOfSight walks the Bresenham line between start and end; any
// intermediate tile (excluding start and end) that is blocked breaks
// line of sight. Start-tile and end-tile collision states never break
// LOS (spec §4.8).
func HasLineOfSight(grid Grid, start, end Tile) bool {
	if start == end {
		return true
	}
	it := NewLineIterator2D(start.X, start.Y, end.X, end.Y)
	for it.Next() {
		x, y := it.X(), it.Y()
		if (x == start.X && y == start.Y) || (x == end.X && y == end.Y) {
			continue
		}
		if grid.Blocked(x, y) {
			return false
		}
	}
	return true
}
