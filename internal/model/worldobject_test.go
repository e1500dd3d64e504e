package model

import (
	"sync"
	"testing"
)

func TestNewWorldObject(t *testing.T) {
	loc := NewLocation(100, 200, "overworld", FacingEast)
	obj := NewWorldObject("obj-1", "TestObject", loc)

	if obj.ObjectID() != "obj-1" {
		t.Errorf("ObjectID() = %q, want %q", obj.ObjectID(), "obj-1")
	}
	if obj.Name() != "TestObject" {
		t.Errorf("Name() = %q, want %q", obj.Name(), "TestObject")
	}
	if got := obj.Location(); got != loc {
		t.Errorf("Location() = %+v, want %+v", got, loc)
	}
}

func TestWorldObject_Name(t *testing.T) {
	obj := NewWorldObject("obj-1", "InitialName", NewLocation(0, 0, "m", FacingNorth))

	if obj.Name() != "InitialName" {
		t.Errorf("Name() = %q, want %q", obj.Name(), "InitialName")
	}

	obj.SetName("UpdatedName")
	if obj.Name() != "UpdatedName" {
		t.Errorf("after SetName, Name() = %q, want %q", obj.Name(), "UpdatedName")
	}
}

func TestWorldObject_Location(t *testing.T) {
	initial := NewLocation(100, 200, "overworld", FacingNorth)
	obj := NewWorldObject("obj-1", "Test", initial)

	if got := obj.Location(); got != initial {
		t.Errorf("Location() = %+v, want %+v", got, initial)
	}

	updated := NewLocation(400, 500, "overworld", FacingSouth)
	obj.SetLocation(updated)

	if got := obj.Location(); got != updated {
		t.Errorf("after SetLocation, Location() = %+v, want %+v", got, updated)
	}

	// Mutating the returned copy must not affect the stored location.
	returned := obj.Location()
	modified := returned.WithCoordinates(999, 999)
	if obj.X() == 999 {
		t.Error("Location() did not return a copy — original was mutated")
	}
	if modified.X != 999 {
		t.Errorf("modified copy X = %d, want 999", modified.X)
	}
}

func TestWorldObject_ConvenienceMethods(t *testing.T) {
	loc := NewLocation(111, 222, "overworld", FacingWest)
	obj := NewWorldObject("obj-1", "Test", loc)

	if obj.X() != 111 {
		t.Errorf("X() = %d, want 111", obj.X())
	}
	if obj.Y() != 222 {
		t.Errorf("Y() = %d, want 222", obj.Y())
	}
	if obj.MapID() != "overworld" {
		t.Errorf("MapID() = %q, want %q", obj.MapID(), "overworld")
	}
	if obj.Facing() != FacingWest {
		t.Errorf("Facing() = %v, want %v", obj.Facing(), FacingWest)
	}
}

func TestWorldObject_ConcurrentReadsAndWrites(t *testing.T) {
	obj := NewWorldObject("obj-1", "Test", NewLocation(0, 0, "m", FacingNorth))

	const readers, writers = 50, 20
	var wg sync.WaitGroup
	wg.Add(readers + writers)

	for range readers {
		go func() {
			defer wg.Done()
			for range 200 {
				_ = obj.Name()
				_ = obj.Location()
				_ = obj.X()
				_ = obj.Y()
			}
		}()
	}

	for i := range writers {
		go func(id int) {
			defer wg.Done()
			for j := range 50 {
				obj.SetLocation(NewLocation(int32(id*100+j), int32(id*200+j), "m", FacingNorth))
			}
		}(i)
	}

	wg.Wait()

	loc := obj.Location()
	if loc.X < 0 || loc.Y < 0 {
		t.Errorf("invalid location after concurrent updates: %+v", loc)
	}
}

func BenchmarkWorldObject_Location(b *testing.B) {
	obj := NewWorldObject("obj-1", "Test", NewLocation(100, 200, "m", FacingNorth))
	b.ResetTimer()
	for b.Loop() {
		_ = obj.Location()
	}
}

func BenchmarkWorldObject_SetLocation(b *testing.B) {
	obj := NewWorldObject("obj-1", "Test", NewLocation(0, 0, "m", FacingNorth))
	loc := NewLocation(100, 200, "m", FacingNorth)
	b.ResetTimer()
	for b.Loop() {
		obj.SetLocation(loc)
	}
}
