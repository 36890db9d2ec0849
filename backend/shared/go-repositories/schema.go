package repositories

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed sql/schema.sql
var SchemaSQL string

// ApplySchema creates any missing tables. Safe to run on every boot.
func ApplySchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
