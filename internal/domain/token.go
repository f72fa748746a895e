package domain

import (
	"strings"
	"time"
)

// VersionToken is the opaque optimistic-lock token carried by editing
// sessions. It encodes the item's last stored write time but callers must
// treat it as equality-only: no ordering or clock semantics are guaranteed.
type VersionToken string

// TokenFromTime derives the token for a stored update timestamp.
func TokenFromTime(t time.Time) VersionToken {
	if t.IsZero() {
		return ""
	}
	return VersionToken(t.UTC().Format(time.RFC3339Nano))
}

// ParseToken normalizes raw token input, accepting the serialized form
// produced by TokenFromTime.
func ParseToken(input string) VersionToken {
	return VersionToken(strings.TrimSpace(input))
}

// Equal reports whether two tokens refer to the same stored version.
func (v VersionToken) Equal(other VersionToken) bool {
	return string(v) == string(other)
}

// IsZero reports whether the token is unset.
func (v VersionToken) IsZero() bool {
	return strings.TrimSpace(string(v)) == ""
}

func (v VersionToken) String() string { return string(v) }

// Time decodes the token back into a timestamp for storage comparisons.
// A zero time is returned for malformed or empty tokens.
func (v VersionToken) Time() time.Time {
	if v.IsZero() {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, string(v))
	if err != nil {
		return time.Time{}
	}
	return parsed
}
