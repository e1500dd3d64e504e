// Package geo implements 2D tile pathfinding and line-of-sight over a
// boolean collision grid: 4-directional A* with a Manhattan heuristic,
// and Bresenham LOS walking.
package geo

import "container/heap"

// MaxPathfindIterations bounds A* search effort per call.
const MaxPathfindIterations = 20000

// Tile is an integer grid coordinate.
type Tile struct {
	X, Y int32
}

// Grid is a read-only view over a map's static collision data.
// Blocked(x, y) must return true for out-of-bounds tiles.
type Grid interface {
	Blocked(x, y int32) bool
}

// Result is the outcome of an A* search.
type Result struct {
	Success  bool
	Path     []Tile
	Distance int
}

// FindPath performs 4-directional A* from start to goal over grid,
// treating the tiles in blocked (other entities) as additionally
// impassable except for goal itself, which is always enterable.
//
// Contract (spec): path[0] == start, path[len-1] == goal on success;
// start == goal returns success with path == [start], distance == 0;
// no path within maxDistance yields failure.
func FindPath(grid Grid, start, goal Tile, blocked map[Tile]struct{}, maxDistance int) Result {
	if maxDistance <= 0 {
		maxDistance = 50
	}

	if start == goal {
		return Result{Success: true, Path: []Tile{start}, Distance: 0}
	}

	if grid.Blocked(goal.X, goal.Y) {
		return Result{}
	}

	isBlocked := func(t Tile) bool {
		if t == goal {
			return false // goal in blocked_positions is allowed
		}
		if grid.Blocked(t.X, t.Y) {
			return true
		}
		if blocked != nil {
			if _, ok := blocked[t]; ok {
				return true
			}
		}
		return false
	}

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &node{tile: start, g: 0, h: manhattan(start, goal)})

	bestG := map[Tile]int{start: 0}
	closed := make(map[Tile]struct{})

	var directions = [4]Tile{{0, -1}, {0, 1}, {1, 0}, {-1, 0}}

	for iterations := 0; open.Len() > 0 && iterations < MaxPathfindIterations; iterations++ {
		current := heap.Pop(open).(*node)

		if current.tile == goal {
			return Result{Success: true, Path: reconstruct(current, start), Distance: current.g}
		}
		if _, done := closed[current.tile]; done {
			continue
		}
		closed[current.tile] = struct{}{}

		if current.g >= maxDistance {
			continue
		}

		for _, d := range directions {
			next := Tile{X: current.tile.X + d.X, Y: current.tile.Y + d.Y}
			if _, done := closed[next]; done {
				continue
			}
			if isBlocked(next) {
				continue
			}
			g := current.g + 1
			if prevG, seen := bestG[next]; seen && prevG <= g {
				continue
			}
			bestG[next] = g
			heap.Push(open, &node{tile: next, parent: current, g: g, h: manhattan(next, goal)})
		}
	}

	return Result{}
}

// NextStep returns the first step of the path from current toward target,
// or false if no path exists.
func NextStep(grid Grid, current, target Tile, blocked map[Tile]struct{}, maxDistance int) (Tile, bool) {
	res := FindPath(grid, current, target, blocked, maxDistance)
	if !res.Success || len(res.Path) < 2 {
		return Tile{}, false
	}
	return res.Path[1], true
}

// NearestOpenTile spirals outward from center by Manhattan distance,
// returning the first walkable tile not present in occupied within
// maxRadius tiles. Used for respawn collision fallback (spec §4.8).
func NearestOpenTile(grid Grid, center Tile, occupied map[Tile]struct{}, maxRadius int) (Tile, bool) {
	if !grid.Blocked(center.X, center.Y) {
		if _, taken := occupied[center]; !taken {
			return center, true
		}
	}
	for r := 1; r <= maxRadius; r++ {
		for dx := int32(-r); dx <= int32(r); dx++ {
			dy := int32(r) - abs32(dx)
			if t, ok := tryOpenTile(grid, center, occupied, dx, dy); ok {
				return t, true
			}
			if dy != 0 {
				if t, ok := tryOpenTile(grid, center, occupied, dx, -dy); ok {
					return t, true
				}
			}
		}
	}
	return Tile{}, false
}

// tryOpenTile checks the single tile at center+(dx,dy) for walkability
// and occupancy, used by NearestOpenTile's diamond-ring enumeration.
func tryOpenTile(grid Grid, center Tile, occupied map[Tile]struct{}, dx, dy int32) (Tile, bool) {
	t := Tile{X: center.X + dx, Y: center.Y + dy}
	if grid.Blocked(t.X, t.Y) {
		return Tile{}, false
	}
	if _, taken := occupied[t]; taken {
		return Tile{}, false
	}
	return t, true
}

func manhattan(a, b Tile) int {
	return int(abs32(a.X-b.X) + abs32(a.Y-b.Y))
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func reconstruct(n *node, start Tile) []Tile {
	var path []Tile
	for cur := n; cur != nil; cur = cur.parent {
		path = append(path, cur.tile)
	}
	// path is currently goal..start; reverse to start..goal
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if len(path) == 0 || path[0] != start {
		path = append([]Tile{start}, path...)
	}
	return path
}

type node struct {
	tile   Tile
	parent *node
	g      int
	h      int
	index  int
}

type nodeHeap []*node

func (h nodeHeap) Len() int      { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].g+h[i].h != h[j].g+h[j].h {
		return h[i].g+h[i].h < h[j].g+h[j].h
	}
	return h[i].h < h[j].h
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)   { n := x.(*node); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}
