package worldmap

import "testing"

func TestChunkOf_PositiveCoordinates(t *testing.T) {
	got := ChunkOf(17, 33, 16)
	want := ChunkCoord{CX: 1, CY: 2}
	if got != want {
		t.Errorf("ChunkOf(17, 33, 16) = %+v, want %+v", got, want)
	}
}

func TestChunkOf_NegativeCoordinatesFloorTowardNegativeInfinity(t *testing.T) {
	got := ChunkOf(-1, -17, 16)
	want := ChunkCoord{CX: -1, CY: -2}
	if got != want {
		t.Errorf("ChunkOf(-1, -17, 16) = %+v, want %+v", got, want)
	}
}

func TestChunkOf_OriginIsChunkZeroZero(t *testing.T) {
	got := ChunkOf(0, 0, 16)
	if got != (ChunkCoord{CX: 0, CY: 0}) {
		t.Errorf("ChunkOf(0, 0, 16) = %+v, want {0 0}", got)
	}
}

func TestChunksWithinRadius_ReturnsSquareOfExpectedSize(t *testing.T) {
	center := ChunkCoord{CX: 5, CY: 5}
	chunks := ChunksWithinRadius(center, 1)
	if len(chunks) != 9 {
		t.Fatalf("len(ChunksWithinRadius(_, 1)) = %d, want 9", len(chunks))
	}

	seen := make(map[ChunkCoord]bool, len(chunks))
	for _, c := range chunks {
		seen[c] = true
	}
	if !seen[center] {
		t.Error("ChunksWithinRadius does not include the center chunk")
	}
	if !seen[(ChunkCoord{CX: 4, CY: 4})] || !seen[(ChunkCoord{CX: 6, CY: 6})] {
		t.Error("ChunksWithinRadius does not include expected corner chunks")
	}
}

func TestChunksWithinRadius_ZeroRadiusReturnsOnlyCenter(t *testing.T) {
	center := ChunkCoord{CX: 2, CY: 3}
	chunks := ChunksWithinRadius(center, 0)
	if len(chunks) != 1 || chunks[0] != center {
		t.Errorf("ChunksWithinRadius(_, 0) = %+v, want [{2 3}]", chunks)
	}
}
