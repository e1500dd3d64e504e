package model

import "testing"

func TestEquipment_Equip_ReturnsPreviouslyEquipped(t *testing.T) {
	eq := NewEquipment("owner-1")
	sword := newTestItem(t, "item-1", "rune_sword", 1)
	axe := newTestItem(t, "item-2", "rune_axe", 1)

	if prev := eq.Equip(SlotMainHand, sword); prev != nil {
		t.Errorf("Equip() first call returned %v, want nil", prev)
	}
	if eq.Get(SlotMainHand) != sword {
		t.Errorf("Get(SlotMainHand) = %v, want %v", eq.Get(SlotMainHand), sword)
	}
	if !sword.IsEquipped() {
		t.Error("sword.IsEquipped() = false, want true")
	}

	prev := eq.Equip(SlotMainHand, axe)
	if prev != sword {
		t.Errorf("Equip() replace returned %v, want %v", prev, sword)
	}
	if eq.Get(SlotMainHand) != axe {
		t.Errorf("Get(SlotMainHand) = %v, want %v", eq.Get(SlotMainHand), axe)
	}
}

func TestEquipment_Unequip(t *testing.T) {
	eq := NewEquipment("owner-1")
	helm := newTestItem(t, "item-1", "iron_helm", 1)
	eq.Equip(SlotHead, helm)

	removed := eq.Unequip(SlotHead)
	if removed != helm {
		t.Errorf("Unequip() = %v, want %v", removed, helm)
	}
	if !eq.IsEmpty(SlotHead) {
		t.Error("IsEmpty(SlotHead) = false, want true")
	}
	if got := eq.Unequip(SlotHead); got != nil {
		t.Errorf("Unequip() on empty slot = %v, want nil", got)
	}
}

func TestEquipment_IsEmpty(t *testing.T) {
	eq := NewEquipment("owner-1")
	if !eq.IsEmpty(SlotOffHand) {
		t.Error("IsEmpty(SlotOffHand) = false, want true on fresh equipment")
	}
	eq.Equip(SlotOffHand, newTestItem(t, "item-1", "wood_shield", 1))
	if eq.IsEmpty(SlotOffHand) {
		t.Error("IsEmpty(SlotOffHand) = true, want false after equip")
	}
}

func TestEquipment_All_ReturnsOnlyOccupiedSlots(t *testing.T) {
	eq := NewEquipment("owner-1")
	sword := newTestItem(t, "item-1", "rune_sword", 1)
	helm := newTestItem(t, "item-2", "iron_helm", 1)
	eq.Equip(SlotMainHand, sword)
	eq.Equip(SlotHead, helm)

	all := eq.All()
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(all))
	}
	if all[SlotMainHand] != sword || all[SlotHead] != helm {
		t.Errorf("All() = %v, missing expected entries", all)
	}
}

func TestEquipment_StatTotals_SumsEquippedItems(t *testing.T) {
	eq := NewEquipment("owner-1")
	eq.Equip(SlotMainHand, newTestItem(t, "item-1", "rune_sword", 1))
	eq.Equip(SlotHead, newTestItem(t, "item-2", "iron_helm", 1))
	eq.Equip(SlotLegs, newTestItem(t, "item-3", "unresolvable_template", 1))

	templateStats := map[string]ItemStats{
		"rune_sword": {Attack: 10, Strength: 2},
		"iron_helm":  {PhysicalDef: 5},
	}
	lookup := func(name string) (ItemStats, bool) {
		s, ok := templateStats[name]
		return s, ok
	}

	total := eq.StatTotals(lookup)
	if total.Attack != 10 || total.Strength != 2 || total.PhysicalDef != 5 {
		t.Errorf("StatTotals() = %+v, want Attack=10 Strength=2 PhysicalDef=5", total)
	}
}

func TestItemStats_Add(t *testing.T) {
	a := ItemStats{Attack: 1, Health: 10}
	b := ItemStats{Attack: 2, Speed: 3}

	sum := a.Add(b)
	if sum.Attack != 3 || sum.Health != 10 || sum.Speed != 3 {
		t.Errorf("Add() = %+v, want Attack=3 Health=10 Speed=3", sum)
	}
}
