package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/deptworks/go-editorial/internal/domain"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		input   string
		want    domain.Kind
		wantErr bool
	}{
		{"news", domain.KindNews, false},
		{" News ", domain.KindNews, false},
		{"RESEARCH", domain.KindResearch, false},
		{"", "", true},
		{"pages", "", true},
	}
	for _, tc := range cases {
		got, err := domain.ParseKind(tc.input)
		if tc.wantErr {
			if !errors.Is(err, domain.ErrKindUnknown) {
				t.Fatalf("%q: expected unknown kind, got %v", tc.input, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q %v", tc.input, got, err)
		}
	}
}

func TestTagLimits(t *testing.T) {
	if domain.KindNews.TagLimit() != 8 {
		t.Fatalf("news tag limit: %d", domain.KindNews.TagLimit())
	}
	if domain.KindResearch.TagLimit() != 12 {
		t.Fatalf("research tag limit: %d", domain.KindResearch.TagLimit())
	}
}

func TestStatesAndTerminals(t *testing.T) {
	if !domain.KnownStatus(domain.KindNews, domain.StatusScheduled) {
		t.Fatalf("scheduled should be known for news")
	}
	if domain.KnownStatus(domain.KindNews, domain.StatusActive) {
		t.Fatalf("active should not belong to news")
	}
	if !domain.Terminal(domain.KindNews, domain.StatusPublished) {
		t.Fatalf("published should be terminal for news")
	}
	if !domain.Terminal(domain.KindResearch, domain.StatusArchived) {
		t.Fatalf("archived should be terminal for research")
	}
	if domain.Terminal(domain.KindResearch, domain.StatusCompleted) {
		t.Fatalf("completed still archives, it is not terminal")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	stamp := time.Date(2026, 3, 10, 9, 0, 0, 123456789, time.UTC)
	token := domain.TokenFromTime(stamp)
	if token.IsZero() {
		t.Fatalf("expected non-zero token")
	}
	if !token.Time().Equal(stamp) {
		t.Fatalf("round trip lost precision: %v vs %v", token.Time(), stamp)
	}
	if !domain.ParseToken("  " + token.String() + " ").Equal(token) {
		t.Fatalf("parse should trim whitespace")
	}
	if !domain.TokenFromTime(time.Time{}).IsZero() {
		t.Fatalf("zero time should produce zero token")
	}
}

func TestTokenEqualityOnly(t *testing.T) {
	a := domain.TokenFromTime(time.Unix(1700000000, 0))
	b := domain.TokenFromTime(time.Unix(1700000000, 1))
	if a.Equal(b) {
		t.Fatalf("different stored versions must not compare equal")
	}
	if !a.Equal(domain.TokenFromTime(time.Unix(1700000000, 0).In(time.FixedZone("X", 3600)))) {
		t.Fatalf("same instant in another zone must compare equal")
	}
}

func TestDraftCloneIsDeep(t *testing.T) {
	start := time.Unix(1700000000, 0)
	draft := &domain.Draft{
		Title:   "Original",
		Tags:    []string{"one"},
		StartAt: &start,
		Metadata: map[string]any{
			"funding": "internal",
		},
	}
	clone := draft.Clone()
	clone.Tags[0] = "mutated"
	*clone.StartAt = start.Add(time.Hour)
	clone.Metadata["funding"] = "external"

	if draft.Tags[0] != "one" || !draft.StartAt.Equal(start) || draft.Metadata["funding"] != "internal" {
		t.Fatalf("clone aliased the original draft")
	}
}

func TestSetSlugIsOneWay(t *testing.T) {
	draft := &domain.Draft{Title: "A Title"}
	draft.SetSlug("manual-slug")
	if !draft.SlugEdited || draft.Slug != "manual-slug" {
		t.Fatalf("manual slug not recorded")
	}
}
