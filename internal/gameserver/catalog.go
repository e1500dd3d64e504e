package gameserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/tileworld/internal/model"
)

// templateSource loads the two template tables from the durable store
// at startup, satisfied by *postgres.TemplateRepository.
type templateSource interface {
	LoadItemTemplates(ctx context.Context) (map[string]model.ItemTemplate, error)
	LoadEntityTemplates(ctx context.Context) (map[string]model.EntityTemplate, error)
}

// Catalog is the in-memory item/entity template registry, loaded once
// at startup and read-only thereafter. Grounded on the teacher's
// package-level `data.ItemTable`/`data.NpcTable` idiom (a name-keyed
// map built by a `Load*` call and read through an accessor), adapted
// from package-level globals to an instance held by Server so the
// template set isn't process-wide mutable state. Satisfies
// combat.EntityTemplateLookup, combat.ItemStatsLookup, and
// ai's combat.EntityTemplateLookup reuse (same interface).
type Catalog struct {
	items    map[string]model.ItemTemplate
	entities map[string]model.EntityTemplate
}

// LoadCatalog builds a Catalog from the durable template tables.
func LoadCatalog(ctx context.Context, src templateSource) (*Catalog, error) {
	items, err := src.LoadItemTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading item templates: %w", err)
	}
	entities, err := src.LoadEntityTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading entity templates: %w", err)
	}

	slog.Info("catalog loaded", "items", len(items), "entities", len(entities))
	return &Catalog{items: items, entities: entities}, nil
}

// ItemTemplate resolves an item template by name.
func (c *Catalog) ItemTemplate(name string) (model.ItemTemplate, bool) {
	t, ok := c.items[name]
	return t, ok
}

// ItemStats resolves an item template's stat vector by name, satisfying
// combat.ItemStatsLookup.
func (c *Catalog) ItemStats(templateName string) (model.ItemStats, bool) {
	t, ok := c.items[templateName]
	if !ok {
		return model.ItemStats{}, false
	}
	return t.Stats, true
}

// EntityTemplate resolves an entity template by name, satisfying
// combat.EntityTemplateLookup.
func (c *Catalog) EntityTemplate(name string) (model.EntityTemplate, bool) {
	t, ok := c.entities[name]
	return t, ok
}
