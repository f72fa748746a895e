package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/domain"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
// It enforces the same invariants as the bun-backed repository: slug
// uniqueness per kind and version token checks on update.
type MemoryRepository struct {
	mu        sync.RWMutex
	items     map[uuid.UUID]*Item
	slugIndex map[string]uuid.UUID
	now       func() time.Time
}

// MemoryOption configures the in-memory repository.
type MemoryOption func(*MemoryRepository)

// WithMemoryClock overrides the clock used to stamp writes.
func WithMemoryClock(clock func() time.Time) MemoryOption {
	return func(m *MemoryRepository) {
		if clock != nil {
			m.now = clock
		}
	}
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	m := &MemoryRepository{
		items:     make(map[uuid.UUID]*Item),
		slugIndex: make(map[string]uuid.UUID),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func slugKey(kind domain.Kind, slug string) string {
	return string(kind) + "::" + strings.ToLower(strings.TrimSpace(slug))
}

// Create inserts the supplied item, rejecting duplicate slugs.
func (m *MemoryRepository) Create(_ context.Context, record *Item) (*Item, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, ErrItemIDRequired
	}
	if !record.Kind.Valid() {
		return nil, ErrKindRequired
	}
	if strings.TrimSpace(record.Slug) == "" {
		return nil, ErrSlugRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := slugKey(record.Kind, record.Slug)
	if existingID, ok := m.slugIndex[key]; ok {
		if existing := m.items[existingID]; existing != nil && existing.DeletedAt == nil {
			return nil, &SlugConflictError{Kind: record.Kind, Slug: record.Slug}
		}
	}

	copied := record.Clone()
	now := m.now()
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now
	copied.Version = domain.TokenFromTime(now).String()
	m.items[copied.ID] = copied
	m.slugIndex[key] = copied.ID
	return copied.Clone(), nil
}

// GetByID retrieves a non-deleted item by identifier.
func (m *MemoryRepository) GetByID(_ context.Context, kind domain.Kind, id uuid.UUID) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.items[id]
	if !ok || rec.DeletedAt != nil || rec.Kind != kind {
		return nil, &NotFoundError{Resource: string(kind), Key: id.String()}
	}
	return rec.Clone(), nil
}

// GetBySlug resolves the indexed slug lookup.
func (m *MemoryRepository) GetBySlug(_ context.Context, kind domain.Kind, slug string) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slugKey(kind, slug)]
	if !ok {
		return nil, &NotFoundError{Resource: string(kind), Key: slug}
	}
	rec := m.items[id]
	if rec == nil || rec.DeletedAt != nil {
		return nil, &NotFoundError{Resource: string(kind), Key: slug}
	}
	return rec.Clone(), nil
}

// List returns all non-deleted items of the kind.
func (m *MemoryRepository) List(_ context.Context, kind domain.Kind) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Item, 0, len(m.items))
	for _, rec := range m.items {
		if rec.Kind != kind || rec.DeletedAt != nil {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}

// Update applies the record when the supplied token matches the stored
// version. Exactly one of two racing writers with the same stale token wins;
// the other receives ConflictError and the stored state is untouched.
func (m *MemoryRepository) Update(_ context.Context, record *Item, token domain.VersionToken) (*Item, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, ErrItemIDRequired
	}
	if token.IsZero() {
		return nil, ErrTokenRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[record.ID]
	if !ok || stored.DeletedAt != nil {
		return nil, &NotFoundError{Resource: string(record.Kind), Key: record.ID.String()}
	}
	if current := stored.VersionToken(); !current.Equal(token) {
		return nil, &ConflictError{ID: record.ID, Stale: token, Current: current}
	}

	if !strings.EqualFold(stored.Slug, record.Slug) {
		key := slugKey(record.Kind, record.Slug)
		if existingID, ok := m.slugIndex[key]; ok && existingID != record.ID {
			if existing := m.items[existingID]; existing != nil && existing.DeletedAt == nil {
				return nil, &SlugConflictError{Kind: record.Kind, Slug: record.Slug}
			}
		}
		delete(m.slugIndex, slugKey(stored.Kind, stored.Slug))
		m.slugIndex[key] = record.ID
	}

	copied := record.Clone()
	copied.Kind = stored.Kind
	copied.CreatedAt = stored.CreatedAt
	copied.CreatedBy = stored.CreatedBy
	now := m.now()
	if !now.After(stored.UpdatedAt) {
		// Guarantee a fresh token even under a frozen or coarse clock.
		now = stored.UpdatedAt.Add(time.Nanosecond)
	}
	copied.UpdatedAt = now
	copied.Version = domain.TokenFromTime(now).String()
	m.items[copied.ID] = copied
	return copied.Clone(), nil
}

// Delete soft-deletes the item and releases its slug.
func (m *MemoryRepository) Delete(_ context.Context, kind domain.Kind, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.items[id]
	if !ok || rec.DeletedAt != nil || rec.Kind != kind {
		return &NotFoundError{Resource: string(kind), Key: id.String()}
	}
	now := m.now()
	rec.DeletedAt = &now
	rec.UpdatedAt = now
	delete(m.slugIndex, slugKey(rec.Kind, rec.Slug))
	return nil
}
