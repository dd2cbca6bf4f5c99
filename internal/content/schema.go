package content

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// EnsureSchema creates the content table and its lookup indexes when they do
// not exist yet. Deployments that manage schema through the embedded SQL
// migrations can skip it.
func EnsureSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().Model((*Item)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create content_items: %w", err)
	}
	indexes := []struct {
		name   string
		column string
	}{
		{name: "content_items_status_idx", column: "status"},
		{name: "content_items_author_idx", column: "author_id"},
	}
	for _, index := range indexes {
		if _, err := db.NewCreateIndex().
			Model((*Item)(nil)).
			Index(index.name).
			Column(index.column).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", index.name, err)
		}
	}
	return nil
}
