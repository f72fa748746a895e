package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the two content families managed by the engine.
type Kind string

const (
	KindNews     Kind = "news"
	KindResearch Kind = "research"
)

// ErrKindUnknown reports an unrecognized content kind.
var ErrKindUnknown = errors.New("domain: unknown content kind")

// ParseKind normalizes raw input into a known Kind.
func ParseKind(input string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(input))) {
	case KindNews:
		return KindNews, nil
	case KindResearch:
		return KindResearch, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrKindUnknown, input)
	}
}

// Valid reports whether the kind is one of the supported families.
func (k Kind) Valid() bool {
	return k == KindNews || k == KindResearch
}

// TagLimit returns the maximum number of tags an item of this kind may carry.
func (k Kind) TagLimit() int {
	if k == KindResearch {
		return 12
	}
	return 8
}

// Status represents a lifecycle stage. News items move through
// draft/scheduled/published; research projects through
// draft/active/completed/archived.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

func (s Status) String() string { return string(s) }

// NormalizeStatus coerces arbitrary status strings into the canonical
// lower-case representation, defaulting empty input to draft.
func NormalizeStatus(input string) Status {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return StatusDraft
	}
	return Status(trimmed)
}

// StatesFor returns the state set defined for a kind, initial state first.
func StatesFor(kind Kind) []Status {
	switch kind {
	case KindResearch:
		return []Status{StatusDraft, StatusActive, StatusCompleted, StatusArchived}
	default:
		return []Status{StatusDraft, StatusScheduled, StatusPublished}
	}
}

// KnownStatus reports whether status belongs to the kind's state set.
func KnownStatus(kind Kind, status Status) bool {
	for _, candidate := range StatesFor(kind) {
		if candidate == status {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions for the
// kind. Terminal items remain editable in place.
func Terminal(kind Kind, status Status) bool {
	switch kind {
	case KindResearch:
		return status == StatusArchived
	default:
		return status == StatusPublished
	}
}
