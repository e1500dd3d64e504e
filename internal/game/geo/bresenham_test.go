package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineIterator2D_Horizontal(t *testing.T) {
	it := NewLineIterator2D(0, 0, 5, 0)

	var points []Tile
	for it.Next() {
		points = append(points, Tile{it.X(), it.Y()})
	}

	require.Len(t, points, 6)
	assert.Equal(t, Tile{0, 0}, points[0])
	assert.Equal(t, Tile{5, 0}, points[5])
	for _, p := range points {
		assert.Equal(t, int32(0), p.Y)
	}
}

func TestLineIterator2D_Diagonal(t *testing.T) {
	it := NewLineIterator2D(0, 0, 3, 3)

	var points []Tile
	for it.Next() {
		points = append(points, Tile{it.X(), it.Y()})
	}
	require.Equal(t, Tile{0, 0}, points[0])
	require.Equal(t, Tile{3, 3}, points[len(points)-1])
}

func TestHasLineOfSight_ClearPath(t *testing.T) {
	g := newGrid(10, 10)
	assert.True(t, HasLineOfSight(g, Tile{0, 0}, Tile{9, 0}))
}

func TestHasLineOfSight_BlockedIntermediateTile(t *testing.T) {
	g := newGrid(10, 1)
	g.block(5, 0)
	assert.False(t, HasLineOfSight(g, Tile{0, 0}, Tile{9, 0}))
}

func TestHasLineOfSight_StartAndEndCollisionIgnored(t *testing.T) {
	// Start-tile and end-tile collision states never break LOS (spec §4.8).
	g := newGrid(10, 1)
	g.block(0, 0)
	g.block(9, 0)
	assert.True(t, HasLineOfSight(g, Tile{0, 0}, Tile{9, 0}))
}

func TestHasLineOfSight_SameTile(t *testing.T) {
	g := newGrid(10, 10)
	assert.True(t, HasLineOfSight(g, Tile{4, 4}, Tile{4, 4}))
}
