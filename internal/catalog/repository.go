package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/domain"
)

// Repository abstracts storage for content items. Implementations are the
// authoritative enforcer for both invariants the engine cares about: slug
// uniqueness among non-deleted items of a kind, and optimistic version
// checks on update.
type Repository interface {
	// Create inserts the record, rejecting duplicate slugs with SlugConflictError.
	Create(ctx context.Context, record *Item) (*Item, error)
	// GetByID retrieves a non-deleted item, returning NotFoundError when absent.
	GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (*Item, error)
	// GetBySlug resolves the indexed slug lookup used by uniqueness checks.
	GetBySlug(ctx context.Context, kind domain.Kind, slug string) (*Item, error)
	// List returns all non-deleted items of the kind.
	List(ctx context.Context, kind domain.Kind) ([]*Item, error)
	// Update applies the record when token matches the stored version,
	// returning ConflictError otherwise. The stored version token is
	// reassigned on every successful write.
	Update(ctx context.Context, record *Item, token domain.VersionToken) (*Item, error)
	// Delete soft-deletes the item.
	Delete(ctx context.Context, kind domain.Kind, id uuid.UUID) error
}
