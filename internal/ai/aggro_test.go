package ai

import (
	"testing"

	"github.com/udisondev/tileworld/internal/model"
)

// openGrid never blocks, for tests that only care about distance/LOS math
// rather than collision.
type openGrid struct{}

func (openGrid) Blocked(x, y int32) bool { return false }

// wallGrid blocks a single vertical wall at x == wallX, used to verify LOS
// filtering.
type wallGrid struct{ wallX int32 }

func (g wallGrid) Blocked(x, y int32) bool { return x == g.wallX }

func newTestPlayerAt(t *testing.T, id string, x, y int32) *model.Player {
	t.Helper()
	p, err := model.NewPlayer(id, id, "hash", model.NewLocation(x, y, "overworld", model.FacingNorth), 10)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	return p
}

func TestAcquireAggroTargetZeroRadiusDisabled(t *testing.T) {
	npc := model.NewLocation(0, 0, "overworld", model.FacingNorth)
	players := []*model.Player{newTestPlayerAt(t, "p1", 1, 0)}
	if _, found := AcquireAggroTarget(npc, 0, openGrid{}, players); found {
		t.Fatalf("expected zero aggro radius to disable aggro")
	}
}

func TestAcquireAggroTargetPicksClosestWithinRadius(t *testing.T) {
	npc := model.NewLocation(0, 0, "overworld", model.FacingNorth)
	near := newTestPlayerAt(t, "near", 2, 0)
	far := newTestPlayerAt(t, "far", 4, 0)
	players := []*model.Player{far, near}

	target, found := AcquireAggroTarget(npc, 5, openGrid{}, players)
	if !found {
		t.Fatalf("expected a target within radius")
	}
	if target.ObjectID() != "near" {
		t.Fatalf("expected closest player 'near', got %q", target.ObjectID())
	}
}

func TestAcquireAggroTargetExcludesOutOfRadius(t *testing.T) {
	npc := model.NewLocation(0, 0, "overworld", model.FacingNorth)
	players := []*model.Player{newTestPlayerAt(t, "far", 10, 0)}
	if _, found := AcquireAggroTarget(npc, 3, openGrid{}, players); found {
		t.Fatalf("expected player beyond aggro radius to be excluded")
	}
}

func TestAcquireAggroTargetExcludesDifferentMap(t *testing.T) {
	npc := model.NewLocation(0, 0, "overworld", model.FacingNorth)
	other, err := model.NewPlayer("other-map", "other", "hash", model.NewLocation(1, 0, "dungeon", model.FacingNorth), 10)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	if _, found := AcquireAggroTarget(npc, 10, openGrid{}, []*model.Player{other}); found {
		t.Fatalf("expected player on a different map to be excluded")
	}
}

func TestAcquireAggroTargetExcludesDead(t *testing.T) {
	npc := model.NewLocation(0, 0, "overworld", model.FacingNorth)
	p := newTestPlayerAt(t, "dead", 1, 0)
	p.SetCurrentHP(0)
	if !p.IsDead() {
		t.Skip("SetCurrentHP(0) did not mark the player dead in this build")
	}
	if _, found := AcquireAggroTarget(npc, 10, openGrid{}, []*model.Player{p}); found {
		t.Fatalf("expected dead player to be excluded from aggro")
	}
}

func TestAcquireAggroTargetRespectsLineOfSight(t *testing.T) {
	npc := model.NewLocation(0, 0, "overworld", model.FacingNorth)
	blocked := newTestPlayerAt(t, "blocked", 4, 0)
	grid := wallGrid{wallX: 2}
	if _, found := AcquireAggroTarget(npc, 10, grid, []*model.Player{blocked}); found {
		t.Fatalf("expected a wall between npc and player to break LOS and exclude the target")
	}
}
