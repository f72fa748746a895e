package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/domain"
)

var (
	ErrKindRequired    = errors.New("catalog: content kind required")
	ErrItemIDRequired  = errors.New("catalog: item id required")
	ErrSlugRequired    = errors.New("catalog: slug is required")
	ErrSlugExists      = errors.New("catalog: slug already exists")
	ErrVersionConflict = errors.New("catalog: version token mismatch")
	ErrTokenRequired   = errors.New("catalog: version token required")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ConflictError reports a rejected write whose version token no longer matches
// the stored value: another session committed first.
type ConflictError struct {
	ID      uuid.UUID
	Stale   domain.VersionToken
	Current domain.VersionToken
}

func (e *ConflictError) Error() string {
	if e == nil {
		return ErrVersionConflict.Error()
	}
	return fmt.Sprintf("%s: id=%s", ErrVersionConflict.Error(), e.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrVersionConflict
}

// SlugConflictError reports a slug held by another non-deleted item of the
// same kind at commit time.
type SlugConflictError struct {
	Kind domain.Kind
	Slug string
}

func (e *SlugConflictError) Error() string {
	if e == nil {
		return ErrSlugExists.Error()
	}
	slug := strings.TrimSpace(e.Slug)
	if slug != "" {
		return fmt.Sprintf("%s: slug=%s", ErrSlugExists.Error(), slug)
	}
	return ErrSlugExists.Error()
}

func (e *SlugConflictError) Unwrap() error {
	return ErrSlugExists
}

// IsNotFound reports whether err represents a missing record.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsConflict reports whether err represents a version token mismatch.
func IsConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
