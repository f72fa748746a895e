package catalog

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema provisions the content_items table and the partial unique
// index backing authoritative slug enforcement. Idempotent; intended for
// embedded setups and tests; production deployments usually carry their own
// migration tooling.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return fmt.Errorf("catalog: database not configured")
	}

	if _, err := db.NewCreateTable().
		Model((*Item)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("catalog: create content_items: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*Item)(nil)).
		Index("ux_content_items_kind_slug").
		Unique().
		IfNotExists().
		Column("kind", "slug").
		Where("deleted_at IS NULL").
		Exec(ctx); err != nil {
		return fmt.Errorf("catalog: create slug index: %w", err)
	}

	return nil
}
