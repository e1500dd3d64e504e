// Package migrations embeds the goose SQL migration set for the durable
// PostgreSQL schema (players, appearance, inventory, equipment, and the
// reference item/entity template tables).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
