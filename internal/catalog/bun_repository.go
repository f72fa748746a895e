package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/deptworks/go-editorial/internal/domain"
)

// NewItemRepository builds the go-repository-bun handlers for Item records.
func NewItemRepository(db *bun.DB) repository.Repository[*Item] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Item]{
		NewRecord: func() *Item { return &Item{} },
		GetID: func(i *Item) uuid.UUID {
			return i.ID
		},
		SetID: func(i *Item, id uuid.UUID) {
			i.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(i *Item) string {
			return i.Slug
		},
	})
}

// BunRepository persists content items through uptrace/bun. Optimistic
// version checks run as a single conditional UPDATE so two racing sessions
// can never both win.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Item]
	now  func() time.Time
}

// BunOption configures the bun repository.
type BunOption func(*BunRepository)

// WithBunClock overrides the clock used to stamp writes.
func WithBunClock(clock func() time.Time) BunOption {
	return func(r *BunRepository) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewBunRepository constructs the repository without read caching.
func NewBunRepository(db *bun.DB, opts ...BunOption) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil, opts...)
}

// NewBunRepositoryWithCache wraps the read path with go-repository-cache when
// both collaborators are supplied.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...BunOption) *BunRepository {
	base := NewItemRepository(db)
	wrapped := base
	if cacheService != nil && keySerializer != nil {
		wrapped = repositorycache.New(base, cacheService, keySerializer)
	}
	r := &BunRepository{db: db, repo: wrapped, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *BunRepository) Create(ctx context.Context, record *Item) (*Item, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, ErrItemIDRequired
	}
	if !record.Kind.Valid() {
		return nil, ErrKindRequired
	}
	if strings.TrimSpace(record.Slug) == "" {
		return nil, ErrSlugRequired
	}

	copied := record.Clone()
	if copied.UpdatedAt.IsZero() {
		copied.UpdatedAt = r.now()
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = copied.UpdatedAt
	}
	copied.Version = domain.TokenFromTime(copied.UpdatedAt).String()

	created, err := r.repo.Create(ctx, copied)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &SlugConflictError{Kind: record.Kind, Slug: record.Slug}
		}
		return nil, fmt.Errorf("catalog: create item: %w", err)
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (*Item, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.id = ?", id).
				Where("?TableAlias.kind = ?", string(kind)).
				Where("?TableAlias.deleted_at IS NULL")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, string(kind), id.String())
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: string(kind), Key: id.String()}
	}
	return records[0], nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, kind domain.Kind, slug string) (*Item, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("lower(?TableAlias.slug) = lower(?)", slug).
				Where("?TableAlias.kind = ?", string(kind)).
				Where("?TableAlias.deleted_at IS NULL")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, string(kind), slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: string(kind), Key: slug}
	}
	return records[0], nil
}

func (r *BunRepository) List(ctx context.Context, kind domain.Kind) ([]*Item, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.kind = ?", string(kind)).
				Where("?TableAlias.deleted_at IS NULL")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: list %s items: %w", kind, err)
	}
	return records, nil
}

// Update performs the compare-and-set against the stored version column.
// The token is matched as a string; comparing on updated_at directly is
// unreliable because drivers serialize timestamps in different formats.
// Zero rows affected means either the row vanished or another session
// committed first; a follow-up read disambiguates the two.
func (r *BunRepository) Update(ctx context.Context, record *Item, token domain.VersionToken) (*Item, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, ErrItemIDRequired
	}
	if token.IsZero() {
		return nil, ErrTokenRequired
	}
	if r.db == nil {
		return nil, fmt.Errorf("catalog: database not configured")
	}

	updated := record.Clone()
	updated.UpdatedAt = r.now()
	if !updated.UpdatedAt.After(token.Time()) {
		updated.UpdatedAt = token.Time().Add(time.Millisecond)
	}
	updated.Version = domain.TokenFromTime(updated.UpdatedAt).String()

	res, err := r.db.NewUpdate().
		Model(updated).
		Column(
			"title", "slug", "slug_edited", "summary", "body", "tags", "status",
			"media_url", "publish_at", "published_at", "start_at", "finish_at",
			"metadata", "updated_by", "updated_at", "version",
		).
		Where("?TableAlias.id = ?", updated.ID).
		Where("?TableAlias.version = ?", token.String()).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &SlugConflictError{Kind: record.Kind, Slug: record.Slug}
		}
		return nil, fmt.Errorf("catalog: update item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("catalog: update item: %w", err)
	}
	if affected == 0 {
		current, lookupErr := r.GetByID(ctx, record.Kind, record.ID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, &ConflictError{ID: record.ID, Stale: token, Current: current.VersionToken()}
	}
	return updated, nil
}

func (r *BunRepository) Delete(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("catalog: database not configured")
	}
	now := r.now()
	res, err := r.db.NewUpdate().
		Model((*Item)(nil)).
		Set("deleted_at = ?", now).
		Set("updated_at = ?", now).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.kind = ?", string(kind)).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("catalog: delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog: delete item: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{Resource: string(kind), Key: id.String()}
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

// isUniqueViolation matches the driver-specific text for unique index
// failures on (kind, slug). The check is intentionally loose: sqlite and
// postgres word it differently.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
