package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/visual"
)

// TemplateRepository loads the reference tables — item templates and
// entity templates — that the world loads once at startup and keeps
// in an in-memory lookup for the rest of the process lifetime.
type TemplateRepository struct {
	db *pgxpool.Pool
}

// NewTemplateRepository creates a TemplateRepository.
func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// LoadItemTemplates loads every row of item_templates, keyed by name.
func (r *TemplateRepository) LoadItemTemplates(ctx context.Context) (map[string]model.ItemTemplate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, display_name, category, rarity, equipment_slot, max_stack_size,
		       is_two_handed, max_durability, required_skill, required_level,
		       is_tradeable, base_value, stats, sprite_id
		FROM item_templates`)
	if err != nil {
		return nil, fmt.Errorf("querying item templates: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.ItemTemplate)
	for rows.Next() {
		var t model.ItemTemplate
		var category, rarity, equipmentSlot string
		var statsRaw []byte
		if err := rows.Scan(
			&t.Name, &t.DisplayName, &category, &rarity, &equipmentSlot, &t.MaxStackSize,
			&t.IsTwoHanded, &t.MaxDurability, &t.RequiredSkill, &t.RequiredLevel,
			&t.IsTradeable, &t.BaseValue, &statsRaw, &t.SpriteID,
		); err != nil {
			return nil, fmt.Errorf("scanning item template row: %w", err)
		}
		t.Category = model.ItemCategory(category)
		t.Rarity = model.ItemRarity(rarity)
		t.EquipmentSlot = model.EquipmentSlot(equipmentSlot)
		if len(statsRaw) > 0 {
			if err := json.Unmarshal(statsRaw, &t.Stats); err != nil {
				return nil, fmt.Errorf("unmarshaling stats for template %q: %w", t.Name, err)
			}
		}
		out[t.Name] = t
	}
	return out, rows.Err()
}

// LoadEntityTemplates loads every row of entity_templates, keyed by name.
func (r *TemplateRepository) LoadEntityTemplates(ctx context.Context) (map[string]model.EntityTemplate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, display_name, kind, behavior, is_attackable, level, skills, appearance,
		       equipped_items, sprite_sheet_id, aggro_radius, disengage_radius,
		       respawn_time, xp_reward
		FROM entity_templates`)
	if err != nil {
		return nil, fmt.Errorf("querying entity templates: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.EntityTemplate)
	for rows.Next() {
		var t model.EntityTemplate
		var kind, behavior string
		var skillsRaw, equippedRaw []byte
		var appearanceRaw []byte
		if err := rows.Scan(
			&t.Name, &t.DisplayName, &kind, &behavior, &t.IsAttackable, &t.Level, &skillsRaw, &appearanceRaw,
			&equippedRaw, &t.SpriteSheetID, &t.AggroRadius, &t.DisengageRadius,
			&t.RespawnTime, &t.XPReward,
		); err != nil {
			return nil, fmt.Errorf("scanning entity template row: %w", err)
		}

		switch kind {
		case "humanoid_npc":
			t.Kind = model.EntityKindHumanoidNPC
		default:
			t.Kind = model.EntityKindMonster
		}
		t.Behavior = model.Behavior(behavior)

		if len(skillsRaw) > 0 {
			if err := json.Unmarshal(skillsRaw, &t.Skills); err != nil {
				return nil, fmt.Errorf("unmarshaling skills for template %q: %w", t.Name, err)
			}
		}
		if len(equippedRaw) > 0 {
			if err := json.Unmarshal(equippedRaw, &t.EquippedItems); err != nil {
				return nil, fmt.Errorf("unmarshaling equipped items for template %q: %w", t.Name, err)
			}
		}
		if len(appearanceRaw) > 0 {
			var a visual.Appearance
			if err := json.Unmarshal(appearanceRaw, &a); err != nil {
				return nil, fmt.Errorf("unmarshaling appearance for template %q: %w", t.Name, err)
			}
			t.Appearance = &a
		}

		out[t.Name] = t
	}
	return out, rows.Err()
}

// UpsertItemTemplate inserts or replaces a single item template row.
// Nothing in this module calls it; the server only reads templates.
func (r *TemplateRepository) UpsertItemTemplate(ctx context.Context, t model.ItemTemplate) error {
	stats, err := json.Marshal(t.Stats)
	if err != nil {
		return fmt.Errorf("marshaling stats for template %q: %w", t.Name, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO item_templates (
			name, display_name, category, rarity, equipment_slot, max_stack_size,
			is_two_handed, max_durability, required_skill, required_level,
			is_tradeable, base_value, stats, sprite_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (name) DO UPDATE SET
			display_name = $2, category = $3, rarity = $4, equipment_slot = $5,
			max_stack_size = $6, is_two_handed = $7, max_durability = $8,
			required_skill = $9, required_level = $10, is_tradeable = $11,
			base_value = $12, stats = $13, sprite_id = $14`,
		t.Name, t.DisplayName, string(t.Category), string(t.Rarity), string(t.EquipmentSlot), t.MaxStackSize,
		t.IsTwoHanded, t.MaxDurability, t.RequiredSkill, t.RequiredLevel,
		t.IsTradeable, t.BaseValue, stats, t.SpriteID,
	)
	if err != nil {
		return fmt.Errorf("upserting item template %q: %w", t.Name, err)
	}
	return nil
}
