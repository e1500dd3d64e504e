package model

import (
	"fmt"
	"sync"
	"time"
)

// ItemLocation представляет местоположение предмета.
type ItemLocation int32

const (
	ItemLocationVoid      ItemLocation = 0 // Удалённый/несуществующий
	ItemLocationInventory ItemLocation = 1 // В инвентаре
	ItemLocationEquipment ItemLocation = 2 // Экипировано
	ItemLocationGround    ItemLocation = 3 // Лежит на тайле карты
)

// String возвращает строковое представление ItemLocation.
func (l ItemLocation) String() string {
	switch l {
	case ItemLocationVoid:
		return "VOID"
	case ItemLocationInventory:
		return "INVENTORY"
	case ItemLocationEquipment:
		return "EQUIPMENT"
	case ItemLocationGround:
		return "GROUND"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", l)
	}
}

// Item представляет один стек предмета, принадлежащий игроку: позицию в
// инвентаре либо надетый слот экипировки (spec §3).
type Item struct {
	itemID       string
	ownerID      string
	templateName string
	count        int32
	durability   int32 // -1, если у шаблона нет прочности
	location     ItemLocation
	slotIndex    int32
	createdAt    time.Time

	mu sync.RWMutex
}

// NewItem создаёт новый предмет с валидацией.
func NewItem(itemID, ownerID, templateName string, count int32) (*Item, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	return &Item{
		itemID:       itemID,
		ownerID:      ownerID,
		templateName: templateName,
		count:        count,
		durability:   -1,
		location:     ItemLocationInventory,
		slotIndex:    -1,
		createdAt:    time.Now(),
	}, nil
}

// ItemID возвращает ID предмета (immutable).
func (i *Item) ItemID() string {
	return i.itemID
}

// OwnerID возвращает ID владельца (immutable).
func (i *Item) OwnerID() string {
	return i.ownerID
}

// TemplateName возвращает имя шаблона предмета (immutable).
func (i *Item) TemplateName() string {
	return i.templateName
}

// Count возвращает количество предметов в стеке.
func (i *Item) Count() int32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.count
}

// SetCount устанавливает количество с валидацией.
func (i *Item) SetCount(count int32) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.count = count
	return nil
}

// AddCount добавляет количество (для стакающихся предметов). Может быть
// отрицательным для уменьшения количества.
func (i *Item) AddCount(delta int32) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	newCount := i.count + delta
	if newCount <= 0 {
		return fmt.Errorf("count would become %d (non-positive)", newCount)
	}

	i.count = newCount
	return nil
}

// Durability возвращает текущую прочность, либо -1, если у предмета нет
// прочности.
func (i *Item) Durability() int32 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.durability
}

// SetDurability устанавливает текущую прочность.
func (i *Item) SetDurability(durability int32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.durability = durability
}

// Location возвращает местоположение предмета и слот.
func (i *Item) Location() (ItemLocation, int32) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.location, i.slotIndex
}

// SetLocation устанавливает местоположение и слот предмета.
func (i *Item) SetLocation(loc ItemLocation, slotIndex int32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.location = loc
	i.slotIndex = slotIndex
}

// CreatedAt возвращает время создания предмета.
func (i *Item) CreatedAt() time.Time {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.createdAt
}

// SetCreatedAt устанавливает время создания (для загрузки из БД).
func (i *Item) SetCreatedAt(t time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.createdAt = t
}

// IsEquipped проверяет, экипирован ли предмет.
func (i *Item) IsEquipped() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.location == ItemLocationEquipment
}

// IsInInventory проверяет, находится ли предмет в инвентаре.
func (i *Item) IsInInventory() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.location == ItemLocationInventory
}
