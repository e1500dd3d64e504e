package model

import (
	"fmt"
	"sync"
)

// InventorySlots is the fixed number of inventory slots a player has
// (spec §3: slot_index ∈ [0, 28)).
const InventorySlots = 28

// Inventory — хранилище предметов игрока: 28 слотов, стакающиеся предметы
// объединяются в один слот до max_stack_size, нестакающиеся занимают
// ровно один слот.
type Inventory struct {
	ownerID string
	slots   [InventorySlots]*Item

	mu sync.RWMutex
}

// NewInventory создаёт пустой инвентарь для игрока.
func NewInventory(ownerID string) *Inventory {
	return &Inventory{ownerID: ownerID}
}

// OwnerID возвращает ID владельца инвентаря.
func (inv *Inventory) OwnerID() string {
	return inv.ownerID
}

// SlotItem возвращает предмет в указанном слоте (может быть nil).
func (inv *Inventory) SlotItem(slotIndex int32) *Item {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	if slotIndex < 0 || slotIndex >= InventorySlots {
		return nil
	}
	return inv.slots[slotIndex]
}

// PlaceItem помещает item в указанный слот, если тот свободен.
func (inv *Inventory) PlaceItem(item *Item, slotIndex int32) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}
	if slotIndex < 0 || slotIndex >= InventorySlots {
		return fmt.Errorf("invalid slot index: %d (must be 0..%d)", slotIndex, InventorySlots-1)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.slots[slotIndex] != nil {
		return fmt.Errorf("slot %d is occupied", slotIndex)
	}

	inv.slots[slotIndex] = item
	item.SetLocation(ItemLocationInventory, slotIndex)
	return nil
}

// AddStackable adds count units of templateName, combining into an
// existing partial stack (up to maxStackSize) before opening new slots.
// Returns the number of units that could not be placed due to a full
// inventory (0 on full success).
func (inv *Inventory) AddStackable(newItem func() (*Item, error), templateName string, count, maxStackSize int32) (int32, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	remaining := count

	for idx, it := range inv.slots {
		if remaining <= 0 {
			break
		}
		if it == nil || it.TemplateName() != templateName {
			continue
		}
		space := maxStackSize - it.Count()
		if space <= 0 {
			continue
		}
		add := remaining
		if add > space {
			add = space
		}
		if err := it.AddCount(add); err != nil {
			return remaining, err
		}
		remaining -= add
		_ = idx
	}

	for remaining > 0 {
		slotIndex := inv.firstEmptySlotLocked()
		if slotIndex < 0 {
			return remaining, nil
		}
		place := remaining
		if place > maxStackSize {
			place = maxStackSize
		}
		item, err := newItem()
		if err != nil {
			return remaining, err
		}
		if err := item.SetCount(place); err != nil {
			return remaining, err
		}
		inv.slots[slotIndex] = item
		item.SetLocation(ItemLocationInventory, slotIndex)
		remaining -= place
	}

	return remaining, nil
}

// firstEmptySlotLocked returns the lowest empty slot index, or -1 if the
// inventory is full. Caller must hold inv.mu.
func (inv *Inventory) firstEmptySlotLocked() int32 {
	for i, it := range inv.slots {
		if it == nil {
			return int32(i)
		}
	}
	return -1
}

// RemoveItem удаляет item из указанного слота.
func (inv *Inventory) RemoveItem(slotIndex int32) *Item {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if slotIndex < 0 || slotIndex >= InventorySlots {
		return nil
	}

	item := inv.slots[slotIndex]
	if item == nil {
		return nil
	}

	inv.slots[slotIndex] = nil
	item.SetLocation(ItemLocationVoid, -1)
	return item
}

// MoveItem swaps or relocates the item in fromSlot to toSlot. If toSlot
// is occupied, the two slots are swapped (spec §4.3's CMD_INVENTORY_MOVE).
func (inv *Inventory) MoveItem(fromSlot, toSlot int32) error {
	if fromSlot < 0 || fromSlot >= InventorySlots || toSlot < 0 || toSlot >= InventorySlots {
		return fmt.Errorf("invalid slot index")
	}
	if fromSlot == toSlot {
		return nil
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	moving := inv.slots[fromSlot]
	if moving == nil {
		return fmt.Errorf("slot %d is empty", fromSlot)
	}

	target := inv.slots[toSlot]
	inv.slots[toSlot] = moving
	moving.SetLocation(ItemLocationInventory, toSlot)

	inv.slots[fromSlot] = target
	if target != nil {
		target.SetLocation(ItemLocationInventory, fromSlot)
	}
	return nil
}

// Items возвращает непустые слоты инвентаря (копия для безопасности).
func (inv *Inventory) Items() []*Item {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	items := make([]*Item, 0, InventorySlots)
	for _, it := range inv.slots {
		if it != nil {
			items = append(items, it)
		}
	}
	return items
}

// Count возвращает количество занятых слотов.
func (inv *Inventory) Count() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	n := 0
	for _, it := range inv.slots {
		if it != nil {
			n++
		}
	}
	return n
}

// IsFull reports whether every slot is occupied.
func (inv *Inventory) IsFull() bool {
	return inv.Count() == InventorySlots
}

// FindByTemplate находит первый предмет с указанным именем шаблона.
func (inv *Inventory) FindByTemplate(templateName string) *Item {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	for _, it := range inv.slots {
		if it != nil && it.TemplateName() == templateName {
			return it
		}
	}
	return nil
}

// Equipment — экипировка игрока: по одному предмету на именованный слот
// (spec §3's Equipment slot). Stat totals are the elementwise sum of
// equipped items' stats, computed by the caller via a template lookup.
type Equipment struct {
	ownerID string
	slots   map[EquipmentSlot]*Item

	mu sync.RWMutex
}

// NewEquipment создаёт пустую экипировку для игрока.
func NewEquipment(ownerID string) *Equipment {
	return &Equipment{
		ownerID: ownerID,
		slots:   make(map[EquipmentSlot]*Item),
	}
}

// OwnerID возвращает ID владельца.
func (e *Equipment) OwnerID() string {
	return e.ownerID
}

// Get возвращает предмет, надетый в указанный слот (может быть nil).
func (e *Equipment) Get(slot EquipmentSlot) *Item {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.slots[slot]
}

// Equip надевает item в указанный слот, возвращая ранее надетый предмет
// (nil если слот был пуст). Caller validates equipment_slot match,
// required skill/level, and two-handed off-hand emptiness beforehand.
func (e *Equipment) Equip(slot EquipmentSlot, item *Item) *Item {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.slots[slot]
	e.slots[slot] = item
	if item != nil {
		item.SetLocation(ItemLocationEquipment, 0)
	}
	return prev
}

// Unequip снимает предмет с указанного слота, возвращая его (nil если
// слот был пуст).
func (e *Equipment) Unequip(slot EquipmentSlot) *Item {
	e.mu.Lock()
	defer e.mu.Unlock()

	item := e.slots[slot]
	delete(e.slots, slot)
	return item
}

// IsEmpty reports whether the given slot has nothing equipped.
func (e *Equipment) IsEmpty(slot EquipmentSlot) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.slots[slot] == nil
}

// All возвращает копию карты всех надетых предметов, keyed by slot.
func (e *Equipment) All() map[EquipmentSlot]*Item {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[EquipmentSlot]*Item, len(e.slots))
	for slot, item := range e.slots {
		if item != nil {
			out[slot] = item
		}
	}
	return out
}

// StatTotals sums the stats of every equipped item, resolving each via
// templateOf (item template name → ItemStats). Unresolvable entries are
// skipped.
func (e *Equipment) StatTotals(templateOf func(templateName string) (ItemStats, bool)) ItemStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var total ItemStats
	for _, item := range e.slots {
		if item == nil {
			continue
		}
		stats, ok := templateOf(item.TemplateName())
		if !ok {
			continue
		}
		total = total.Add(stats)
	}
	return total
}
