package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/internal/validation"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func validNewsDraft() *domain.Draft {
	return &domain.Draft{
		Title:   "Department colloquium announced",
		Slug:    "department-colloquium-announced",
		Summary: "The physics department will host its spring colloquium with invited speakers.",
		Body:    "<p>Details to follow.</p>",
		Tags:    []string{"events"},
		Status:  domain.StatusDraft,
	}
}

func validResearchDraft() *domain.Draft {
	return &domain.Draft{
		Title:    "Quantum sensing for geophysics",
		Slug:     "quantum-sensing-for-geophysics",
		Summary:  "A three-year project exploring quantum magnetometers for subsurface imaging.",
		Body:     "<p>" + strings.Repeat("Measurement campaigns across field sites. ", 3) + "</p>",
		Tags:     []string{"quantum", "geophysics"},
		MediaURL: "https://cdn.example.edu/projects/quantum-sensing.jpg",
		Status:   domain.StatusDraft,
	}
}

func TestValidateNewsDraftSucceeds(t *testing.T) {
	errs := validation.Validate(validNewsDraft(), domain.KindNews, domain.StatusDraft, testNow)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateTitleBounds(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  bool
	}{
		{"empty", "", true},
		{"too short", "abc", true},
		{"minimum", "abcd", false},
		{"too long", strings.Repeat("x", 141), true},
		{"maximum", strings.Repeat("x", 140), false},
	}
	for _, tc := range cases {
		draft := validNewsDraft()
		draft.Title = tc.title
		errs := validation.Validate(draft, domain.KindNews, domain.StatusDraft, testNow)
		_, flagged := errs[validation.FieldTitle]
		if flagged != tc.want {
			t.Fatalf("%s: title error = %v, want %v (errs: %v)", tc.name, flagged, tc.want, errs)
		}
	}
}

func TestValidateSummaryBounds(t *testing.T) {
	draft := validNewsDraft()
	draft.Summary = "too short"
	errs := validation.Validate(draft, domain.KindNews, domain.StatusDraft, testNow)
	if _, ok := errs[validation.FieldSummary]; !ok {
		t.Fatalf("expected summary error, got %v", errs)
	}

	draft.Summary = strings.Repeat("a", 401)
	errs = validation.Validate(draft, domain.KindNews, domain.StatusDraft, testNow)
	if _, ok := errs[validation.FieldSummary]; !ok {
		t.Fatalf("expected summary error for overlong input, got %v", errs)
	}
}

func TestValidateScheduledRequiresFutureDate(t *testing.T) {
	draft := validNewsDraft()
	errs := validation.Validate(draft, domain.KindNews, domain.StatusScheduled, testNow)
	if _, ok := errs[validation.FieldScheduleAt]; !ok {
		t.Fatalf("expected schedule error without date, got %v", errs)
	}

	past := testNow.Add(-time.Hour)
	draft.ScheduleAt = &past
	errs = validation.Validate(draft, domain.KindNews, domain.StatusScheduled, testNow)
	if _, ok := errs[validation.FieldScheduleAt]; !ok {
		t.Fatalf("expected schedule error for past date, got %v", errs)
	}

	exact := testNow
	draft.ScheduleAt = &exact
	errs = validation.Validate(draft, domain.KindNews, domain.StatusScheduled, testNow)
	if _, ok := errs[validation.FieldScheduleAt]; !ok {
		t.Fatalf("expected schedule error for non-future date, got %v", errs)
	}

	future := testNow.Add(time.Hour)
	draft.ScheduleAt = &future
	errs = validation.Validate(draft, domain.KindNews, domain.StatusScheduled, testNow)
	if _, ok := errs[validation.FieldScheduleAt]; ok {
		t.Fatalf("unexpected schedule error for future date: %v", errs)
	}
}

func TestValidateScheduledRejectedRegardlessOfOtherFields(t *testing.T) {
	// Every other field is valid; the missing date alone must reject.
	draft := validNewsDraft()
	draft.ScheduleAt = nil
	errs := validation.Validate(draft, domain.KindNews, domain.StatusScheduled, testNow)
	if len(errs) == 0 {
		t.Fatal("expected rejection for scheduled target without date")
	}
}

func TestValidateResearchMediaURL(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"missing", "", true},
		{"absolute https", "https://cdn.example.edu/cover.jpg", false},
		{"absolute http", "http://cdn.example.edu/cover.jpg", false},
		{"asset path", "/assets/projects/cover.jpg", false},
		{"relative asset", "assets/cover.jpg", false},
		{"dot relative", "./cover.jpg", false},
		{"scheme only", "ftp://example.edu/cover.jpg", true},
		{"bare word", "cover.jpg", true},
	}
	for _, tc := range cases {
		draft := validResearchDraft()
		draft.MediaURL = tc.value
		errs := validation.Validate(draft, domain.KindResearch, domain.StatusDraft, testNow)
		_, flagged := errs[validation.FieldMediaURL]
		if flagged != tc.want {
			t.Fatalf("%s: media error = %v, want %v", tc.name, flagged, tc.want)
		}
	}
}

func TestValidateResearchBodyHeuristic(t *testing.T) {
	draft := validResearchDraft()
	draft.Body = "<p><b></b>   </p>"
	errs := validation.Validate(draft, domain.KindResearch, domain.StatusActive, testNow)
	if _, ok := errs[validation.FieldBody]; !ok {
		t.Fatalf("expected body error for empty markup, got %v", errs)
	}

	// Same draft stays valid as a plain draft: the heuristic only gates
	// live statuses.
	errs = validation.Validate(draft, domain.KindResearch, domain.StatusDraft, testNow)
	if _, ok := errs[validation.FieldBody]; ok {
		t.Fatalf("unexpected body error for draft target: %v", errs)
	}

	draft.Body = "<p>" + strings.Repeat("word ", 12) + "</p>"
	errs = validation.Validate(draft, domain.KindResearch, domain.StatusActive, testNow)
	if _, ok := errs[validation.FieldBody]; ok {
		t.Fatalf("unexpected body error for populated description: %v", errs)
	}
}

func TestValidateResearchCompletedRequiresFinish(t *testing.T) {
	draft := validResearchDraft()
	errs := validation.Validate(draft, domain.KindResearch, domain.StatusCompleted, testNow)
	if _, ok := errs[validation.FieldFinishAt]; !ok {
		t.Fatalf("expected finish date error, got %v", errs)
	}

	finish := testNow.Add(24 * time.Hour)
	draft.FinishAt = &finish
	errs = validation.Validate(draft, domain.KindResearch, domain.StatusCompleted, testNow)
	if _, ok := errs[validation.FieldFinishAt]; ok {
		t.Fatalf("unexpected finish error with date set: %v", errs)
	}
}

func TestValidateFinishBeforeStart(t *testing.T) {
	draft := validResearchDraft()
	start := testNow
	finish := testNow.Add(-time.Hour)
	draft.StartAt = &start
	draft.FinishAt = &finish
	errs := validation.Validate(draft, domain.KindResearch, domain.StatusDraft, testNow)
	if _, ok := errs[validation.FieldFinishAt]; !ok {
		t.Fatalf("expected finish-before-start error, got %v", errs)
	}
}

func TestValidateTagLimits(t *testing.T) {
	draft := validNewsDraft()
	draft.Tags = make([]string, 9)
	for i := range draft.Tags {
		draft.Tags[i] = "tag"
	}
	errs := validation.Validate(draft, domain.KindNews, domain.StatusDraft, testNow)
	if _, ok := errs[validation.FieldTags]; !ok {
		t.Fatalf("expected tags error for news over 8, got %v", errs)
	}

	research := validResearchDraft()
	research.Tags = make([]string, 12)
	for i := range research.Tags {
		research.Tags[i] = "tag"
	}
	errs = validation.Validate(research, domain.KindResearch, domain.StatusDraft, testNow)
	if _, ok := errs[validation.FieldTags]; ok {
		t.Fatalf("unexpected tags error for research at 12: %v", errs)
	}
}

func TestValidateNilDraftNeverPanics(t *testing.T) {
	errs := validation.Validate(nil, domain.KindNews, domain.StatusDraft, testNow)
	if _, ok := errs[validation.FieldDraft]; !ok {
		t.Fatalf("expected generic draft error, got %v", errs)
	}
}

func TestValidateMetadataSchema(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"funding": map[string]any{"type": "string"},
		},
		"required": []any{"funding"},
	}

	draft := validResearchDraft()
	errs := validation.ValidateWithOptions(draft, domain.KindResearch, domain.StatusDraft, testNow,
		validation.Options{MetadataSchema: schema})
	if _, ok := errs[validation.FieldMetadata]; !ok {
		t.Fatalf("expected metadata error for missing funding, got %v", errs)
	}

	draft.Metadata = map[string]any{"funding": "FCT-2026-042"}
	errs = validation.ValidateWithOptions(draft, domain.KindResearch, domain.StatusDraft, testNow,
		validation.Options{MetadataSchema: schema})
	if _, ok := errs[validation.FieldMetadata]; ok {
		t.Fatalf("unexpected metadata error: %v", errs)
	}
}

func TestWarningsArchiveWithoutFinish(t *testing.T) {
	draft := validResearchDraft()
	warnings := validation.Warnings(draft, domain.KindResearch, domain.StatusArchived)
	if len(warnings) != 1 || warnings[0].Field != validation.FieldFinishAt {
		t.Fatalf("expected archive warning on finish date, got %v", warnings)
	}

	finish := testNow
	draft.FinishAt = &finish
	if warnings := validation.Warnings(draft, domain.KindResearch, domain.StatusArchived); len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}
