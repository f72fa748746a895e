package slugs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/catalog"
	"github.com/deptworks/go-editorial/internal/domain"
)

const maxSuffixAttempts = 50

// Checker answers slug uniqueness questions against the catalog. The answer
// is advisory: the repository enforces the invariant authoritatively at
// commit time, so a race between two simultaneous creators still resolves to
// exactly one winner.
type Checker struct {
	repo catalog.Repository
}

// NewChecker constructs a checker over the supplied repository.
func NewChecker(repo catalog.Repository) *Checker {
	return &Checker{repo: repo}
}

// IsUnique reports whether no item of the kind other than excludeID holds the
// slug. Pass uuid.Nil when creating.
func (c *Checker) IsUnique(ctx context.Context, kind domain.Kind, slug string, excludeID uuid.UUID) (bool, error) {
	existing, err := c.repo.GetBySlug(ctx, kind, slug)
	if err != nil {
		if catalog.IsNotFound(err) {
			return true, nil
		}
		return false, err
	}
	return existing.ID == excludeID, nil
}

// EnsureUnique returns base when free, otherwise the first base-2, base-3…
// variant not held by another item of the kind.
func (c *Checker) EnsureUnique(ctx context.Context, kind domain.Kind, base string, excludeID uuid.UUID) (string, error) {
	if base == "" {
		return "", catalog.ErrSlugRequired
	}
	candidate := base
	for attempt := 2; attempt < maxSuffixAttempts+2; attempt++ {
		unique, err := c.IsUnique(ctx, kind, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if unique {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", fmt.Errorf("slugs: no free variant of %q after %d attempts", base, maxSuffixAttempts)
}
