package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/tileworld/internal/model"
)

// InventoryRepository persists inventory slots and equipped items. It
// reloads or replaces the full slot set rather than diffing individual
// items.
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates an InventoryRepository.
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// LoadInventory rebuilds a player's inventory from persisted slots.
func (r *InventoryRepository) LoadInventory(ctx context.Context, ownerID string) (*model.Inventory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT item_id, template_name, count, durability, slot_index
		 FROM inventory_items WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying inventory for %q: %w", ownerID, err)
	}
	defer rows.Close()

	inv := model.NewInventory(ownerID)
	for rows.Next() {
		var itemID, templateName string
		var count, durability, slotIndex int32
		if err := rows.Scan(&itemID, &templateName, &count, &durability, &slotIndex); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		item, err := model.NewItem(itemID, ownerID, templateName, count)
		if err != nil {
			return nil, fmt.Errorf("reconstructing item %q: %w", itemID, err)
		}
		item.SetDurability(durability)
		if err := inv.PlaceItem(item, slotIndex); err != nil {
			return nil, fmt.Errorf("placing item %q at slot %d: %w", itemID, slotIndex, err)
		}
	}
	return inv, rows.Err()
}

// LoadEquipment rebuilds a player's equipment from persisted slots.
func (r *InventoryRepository) LoadEquipment(ctx context.Context, ownerID string) (*model.Equipment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT item_id, template_name, count, durability, equipment_slot
		 FROM equipped_items WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying equipment for %q: %w", ownerID, err)
	}
	defer rows.Close()

	eq := model.NewEquipment(ownerID)
	for rows.Next() {
		var itemID, templateName, slotName string
		var count, durability int32
		if err := rows.Scan(&itemID, &templateName, &count, &durability, &slotName); err != nil {
			return nil, fmt.Errorf("scanning equipment row: %w", err)
		}
		item, err := model.NewItem(itemID, ownerID, templateName, count)
		if err != nil {
			return nil, fmt.Errorf("reconstructing equipped item %q: %w", itemID, err)
		}
		item.SetDurability(durability)
		eq.Equip(model.EquipmentSlot(slotName), item)
	}
	return eq, rows.Err()
}

// SaveInventory replaces the persisted slot set wholesale with inv's
// current contents. The inventory command handlers call it after every
// change they make (move, sort, drop, pickup).
func (r *InventoryRepository) SaveInventory(ctx context.Context, inv *model.Inventory) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM inventory_items WHERE owner_id = $1`, inv.OwnerID()); err != nil {
		return fmt.Errorf("clearing inventory for %q: %w", inv.OwnerID(), err)
	}

	for slotIndex := int32(0); slotIndex < model.InventorySlots; slotIndex++ {
		item := inv.SlotItem(slotIndex)
		if item == nil {
			continue
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO inventory_items (item_id, owner_id, template_name, count, durability, slot_index)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ItemID(), inv.OwnerID(), item.TemplateName(), item.Count(), item.Durability(), slotIndex,
		)
		if err != nil {
			return fmt.Errorf("saving inventory item %q: %w", item.ItemID(), err)
		}
	}

	return tx.Commit(ctx)
}

// SaveEquipment replaces the persisted equipment set wholesale with
// eq's current contents.
func (r *InventoryRepository) SaveEquipment(ctx context.Context, eq *model.Equipment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM equipped_items WHERE owner_id = $1`, eq.OwnerID()); err != nil {
		return fmt.Errorf("clearing equipment for %q: %w", eq.OwnerID(), err)
	}

	for slot, item := range eq.All() {
		_, err := tx.Exec(ctx,
			`INSERT INTO equipped_items (item_id, owner_id, template_name, count, durability, equipment_slot)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ItemID(), eq.OwnerID(), item.TemplateName(), item.Count(), item.Durability(), string(slot),
		)
		if err != nil {
			return fmt.Errorf("saving equipped item %q: %w", item.ItemID(), err)
		}
	}

	return tx.Commit(ctx)
}
