package worldmap

// ChunkCoord identifies one square chunk of tiles on a map, the unit
// broad-phase spatial queries (local chat radius, nearby-entity scans)
// are bucketed by — generalizing the teacher's fixed world-region
// index math (`CoordToRegionIndex`/`IsValidRegionIndex`) from its
// hardcoded 2048-unit continuous-coordinate regions to a
// configurable, tile-grid chunk size (spec §4.9's chunk_size).
type ChunkCoord struct {
	CX, CY int32
}

// ChunkOf returns the chunk containing tile (x, y) for the given
// chunkSize (tiles per chunk edge).
func ChunkOf(x, y, chunkSize int32) ChunkCoord {
	return ChunkCoord{CX: floorDiv(x, chunkSize), CY: floorDiv(y, chunkSize)}
}

// floorDiv is integer division that rounds toward negative infinity,
// needed because tile coordinates can be negative and Go's native "/"
// truncates toward zero.
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ChunksWithinRadius returns every chunk coordinate within radius
// chunks (inclusive, Chebyshev distance) of center — the set a
// chunk_radius·chunk_size local-chat or nearby-entity query fans out
// over.
func ChunksWithinRadius(center ChunkCoord, radius int32) []ChunkCoord {
	out := make([]ChunkCoord, 0, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			out = append(out, ChunkCoord{CX: center.CX + dx, CY: center.CY + dy})
		}
	}
	return out
}
