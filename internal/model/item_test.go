package model

import (
	"sync"
	"testing"
	"time"
)

func TestItemLocation_String(t *testing.T) {
	tests := []struct {
		location ItemLocation
		want     string
	}{
		{ItemLocationVoid, "VOID"},
		{ItemLocationInventory, "INVENTORY"},
		{ItemLocationEquipment, "EQUIPMENT"},
		{ItemLocationGround, "GROUND"},
		{ItemLocation(999), "UNKNOWN(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.location.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewItem(t *testing.T) {
	tests := []struct {
		name     string
		template string
		count    int32
		wantErr  bool
	}{
		{name: "valid item", template: "bronze_arrow", count: 1000, wantErr: false},
		{name: "count = 1", template: "rune_sword", count: 1, wantErr: false},
		{name: "count = 0 (invalid)", template: "rune_sword", count: 0, wantErr: true},
		{name: "count negative (invalid)", template: "rune_sword", count: -10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewItem("item-1", "owner-1", tt.template, tt.count)

			if tt.wantErr {
				if err == nil {
					t.Errorf("NewItem() error = nil, wantErr = true")
				}
				return
			}

			if err != nil {
				t.Errorf("NewItem() unexpected error = %v", err)
				return
			}

			if item.OwnerID() != "owner-1" {
				t.Errorf("OwnerID() = %q, want %q", item.OwnerID(), "owner-1")
			}
			if item.TemplateName() != tt.template {
				t.Errorf("TemplateName() = %q, want %q", item.TemplateName(), tt.template)
			}
			if item.Count() != tt.count {
				t.Errorf("Count() = %d, want %d", item.Count(), tt.count)
			}
			if item.Durability() != -1 {
				t.Errorf("Durability() = %d, want -1", item.Durability())
			}

			loc, slot := item.Location()
			if loc != ItemLocationInventory {
				t.Errorf("Location() = %v, want INVENTORY", loc)
			}
			if slot != -1 {
				t.Errorf("SlotIndex = %d, want -1", slot)
			}

			if time.Since(item.CreatedAt()) > time.Second {
				t.Errorf("CreatedAt() = %v, want recent time", item.CreatedAt())
			}

			if !item.IsInInventory() {
				t.Error("IsInInventory() = false, want true")
			}
			if item.IsEquipped() {
				t.Error("IsEquipped() = true, want false")
			}
		})
	}
}

func TestItem_ImmutableFields(t *testing.T) {
	item, _ := NewItem("item-1", "owner-1", "bronze_arrow", 1000)

	if item.ItemID() != "item-1" {
		t.Errorf("ItemID() = %q, want %q", item.ItemID(), "item-1")
	}
	if item.OwnerID() != "owner-1" {
		t.Errorf("OwnerID() = %q, want %q", item.OwnerID(), "owner-1")
	}
}

func TestItem_Count(t *testing.T) {
	item, _ := NewItem("item-1", "owner-1", "bronze_arrow", 1000)

	if err := item.SetCount(500); err != nil {
		t.Errorf("SetCount(500) error = %v", err)
	}
	if item.Count() != 500 {
		t.Errorf("After SetCount(500), Count() = %d", item.Count())
	}

	if err := item.SetCount(0); err == nil {
		t.Error("SetCount(0) error = nil, want error")
	}
	if err := item.SetCount(-10); err == nil {
		t.Error("SetCount(-10) error = nil, want error")
	}

	if item.Count() != 500 {
		t.Errorf("After invalid SetCount, Count() = %d, want 500", item.Count())
	}
}

func TestItem_AddCount(t *testing.T) {
	item, _ := NewItem("item-1", "owner-1", "bronze_arrow", 1000)

	if err := item.AddCount(500); err != nil {
		t.Errorf("AddCount(500) error = %v", err)
	}
	if item.Count() != 1500 {
		t.Errorf("After AddCount(500), Count() = %d, want 1500", item.Count())
	}

	if err := item.AddCount(-200); err != nil {
		t.Errorf("AddCount(-200) error = %v", err)
	}
	if item.Count() != 1300 {
		t.Errorf("After AddCount(-200), Count() = %d, want 1300", item.Count())
	}

	if err := item.AddCount(-1300); err == nil {
		t.Error("AddCount(-1300) error = nil, want error (would result in 0)")
	}
	if err := item.AddCount(-2000); err == nil {
		t.Error("AddCount(-2000) error = nil, want error (would result in negative)")
	}

	if item.Count() != 1300 {
		t.Errorf("After invalid AddCount, Count() = %d, want 1300", item.Count())
	}
}

func TestItem_Durability(t *testing.T) {
	item, _ := NewItem("item-1", "owner-1", "rune_sword", 1)

	if item.Durability() != -1 {
		t.Errorf("Initial Durability() = %d, want -1", item.Durability())
	}

	item.SetDurability(100)
	if item.Durability() != 100 {
		t.Errorf("After SetDurability(100), Durability() = %d", item.Durability())
	}

	item.SetDurability(37)
	if item.Durability() != 37 {
		t.Errorf("After SetDurability(37), Durability() = %d", item.Durability())
	}
}

func TestItem_Location(t *testing.T) {
	item, _ := NewItem("item-1", "owner-1", "rune_sword", 1)

	loc, slot := item.Location()
	if loc != ItemLocationInventory {
		t.Errorf("Initial Location() = %v, want INVENTORY", loc)
	}
	if slot != -1 {
		t.Errorf("Initial slot = %d, want -1", slot)
	}

	item.SetLocation(ItemLocationEquipment, 5)
	loc, slot = item.Location()
	if loc != ItemLocationEquipment {
		t.Errorf("After SetLocation EQUIPMENT, Location() = %v", loc)
	}
	if slot != 5 {
		t.Errorf("After SetLocation slot 5, slot = %d", slot)
	}

	if !item.IsEquipped() {
		t.Error("IsEquipped() = false, want true")
	}
	if item.IsInInventory() {
		t.Error("IsInInventory() = true, want false")
	}

	item.SetLocation(ItemLocationGround, 0)
	loc, _ = item.Location()
	if loc != ItemLocationGround {
		t.Errorf("After SetLocation GROUND, Location() = %v", loc)
	}
	if item.IsEquipped() {
		t.Error("IsEquipped() = true, want false (on ground)")
	}
	if item.IsInInventory() {
		t.Error("IsInInventory() = true, want false (on ground)")
	}

	item.SetLocation(ItemLocationInventory, -1)
	if !item.IsInInventory() {
		t.Error("IsInInventory() = false, want true")
	}
}

func TestItem_CreatedAt(t *testing.T) {
	item, _ := NewItem("item-1", "owner-1", "rune_sword", 1)

	if time.Since(item.CreatedAt()) > time.Second {
		t.Errorf("CreatedAt() = %v, want recent time", item.CreatedAt())
	}

	customTime := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	item.SetCreatedAt(customTime)

	if !item.CreatedAt().Equal(customTime) {
		t.Errorf("After SetCreatedAt, CreatedAt() = %v, want %v", item.CreatedAt(), customTime)
	}
}

func TestItem_ConcurrentCountUpdates(t *testing.T) {
	item, _ := NewItem("item-1", "owner-1", "bronze_arrow", 10000)

	const numUpdaters = 50
	var wg sync.WaitGroup
	wg.Add(numUpdaters)

	for range numUpdaters {
		go func() {
			defer wg.Done()
			for range 100 {
				_ = item.AddCount(1)
			}
		}()
	}

	wg.Wait()

	count := item.Count()
	expectedMin := int32(10000 + numUpdaters*100)
	if count < expectedMin {
		t.Errorf("After concurrent AddCount, Count() = %d, want >= %d", count, expectedMin)
	}
}

func TestItem_ConcurrentLocationUpdates(t *testing.T) {
	item, _ := NewItem("item-1", "owner-1", "rune_sword", 1)

	const numUpdaters = 50
	var wg sync.WaitGroup
	wg.Add(numUpdaters)

	for i := range numUpdaters {
		go func(id int) {
			defer wg.Done()
			for j := range 100 {
				loc := ItemLocation(j % 4)
				slot := int32(id*100 + j)
				item.SetLocation(loc, slot)
			}
		}(i)
	}

	wg.Wait()

	loc, slot := item.Location()
	if loc < ItemLocationVoid || loc > ItemLocationGround {
		t.Errorf("Invalid location after concurrent updates: %v", loc)
	}
	if slot < 0 {
		t.Errorf("Invalid slot after concurrent updates: %d", slot)
	}
}

// Benchmark для hot path methods
func BenchmarkItem_Count(b *testing.B) {
	item, _ := NewItem("item-1", "owner-1", "bronze_arrow", 1000)

	b.ResetTimer()
	for b.Loop() {
		_ = item.Count()
	}
}

func BenchmarkItem_AddCount(b *testing.B) {
	item, _ := NewItem("item-1", "owner-1", "bronze_arrow", 1000000000)

	b.ResetTimer()
	for b.Loop() {
		_ = item.AddCount(1)
	}
}

func BenchmarkItem_Location(b *testing.B) {
	item, _ := NewItem("item-1", "owner-1", "bronze_arrow", 1000)

	b.ResetTimer()
	for b.Loop() {
		_, _ = item.Location()
	}
}
