package gameserver

import (
	"testing"

	"github.com/udisondev/tileworld/internal/model"
)

func TestDiffEntities_spawnedUpdatedDespawned(t *testing.T) {
	prev := map[string]model.EntityInstance{
		"stay":   {InstanceID: "stay", X: 5, Y: 5, State: model.StateIdle},
		"moved":  {InstanceID: "moved", X: 1, Y: 1, State: model.StateIdle},
		"gone":   {InstanceID: "gone", X: 9, Y: 9, State: model.StateWander},
	}
	current := []model.EntityInstance{
		{InstanceID: "stay", X: 5, Y: 5, State: model.StateIdle},
		{InstanceID: "moved", X: 2, Y: 1, State: model.StateIdle},
		{InstanceID: "new", X: 0, Y: 0, State: model.StateIdle},
	}

	_, spawned, updated, despawned := diffEntities(prev, current)

	if len(spawned) != 1 || spawned[0].InstanceID != "new" {
		t.Fatalf("expected only 'new' spawned, got %v", spawned)
	}
	if len(updated) != 1 || updated[0].InstanceID != "moved" {
		t.Fatalf("expected only 'moved' updated, got %v", updated)
	}
	if len(despawned) != 1 || despawned[0].InstanceID != "gone" {
		t.Fatalf("expected only 'gone' despawned, got %v", despawned)
	}
}

func TestDiffEntities_emptyPrevAllSpawned(t *testing.T) {
	current := []model.EntityInstance{
		{InstanceID: "a"},
		{InstanceID: "b"},
	}
	_, spawned, updated, despawned := diffEntities(nil, current)

	if len(spawned) != 2 {
		t.Fatalf("expected both entities spawned on first tick, got %v", spawned)
	}
	if len(updated) != 0 || len(despawned) != 0 {
		t.Fatalf("expected no updates/despawns on first tick, got updated=%v despawned=%v", updated, despawned)
	}
}
