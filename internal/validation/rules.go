package validation

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/deptworks/go-editorial/internal/domain"
)

// TitleMaxLen bounds titles in runes. Exported so callers deriving titles,
// like duplication, can trim to fit before validating.
const TitleMaxLen = 140

const (
	titleMinLen   = 4
	summaryMinLen = 30
	summaryMaxLen = 400
	bodyMinLen    = 50
)

// Field keys used in error maps. Callers map these onto editor inputs.
const (
	FieldTitle      = "title"
	FieldSummary    = "summary"
	FieldSlug       = "slug"
	FieldBody       = "body"
	FieldTags       = "tags"
	FieldMediaURL   = "media_url"
	FieldScheduleAt = "schedule_at"
	FieldStartAt    = "start_at"
	FieldFinishAt   = "finish_at"
	FieldMetadata   = "metadata"
	FieldDraft      = "draft"
)

// Options parameterize the rule set beyond the draft itself.
type Options struct {
	// MetadataSchema, when non-nil, is applied to draft metadata.
	MetadataSchema map[string]any
}

// Warning is a non-blocking advisory surfaced alongside a passing validation.
type Warning struct {
	Field   string
	Message string
}

// Validate computes the field-keyed error map for a draft aimed at the target
// status. An empty result signals success. The function is pure, performs no
// I/O, and never panics: it runs on every keystroke-adjacent save, so
// malformed input must yield a field error rather than crash the session.
func Validate(draft *domain.Draft, kind domain.Kind, target domain.Status, now time.Time) validation.Errors {
	return ValidateWithOptions(draft, kind, target, now, Options{})
}

// ValidateWithOptions is Validate with kind-profile options applied.
func ValidateWithOptions(draft *domain.Draft, kind domain.Kind, target domain.Status, now time.Time, opts Options) validation.Errors {
	errs := validation.Errors{}

	if draft == nil {
		errs[FieldDraft] = validation.NewError("editorial.validation.draft_required", "content is missing")
		return errs
	}
	if !kind.Valid() {
		errs[FieldDraft] = validation.NewError("editorial.validation.kind_unknown", "unknown content kind")
		return errs
	}
	if !domain.KnownStatus(kind, target) {
		errs[FieldDraft] = validation.NewError("editorial.validation.status_unknown", "unknown target status")
		return errs
	}

	validateTitle(errs, draft.Title)
	validateSummary(errs, draft.Summary)
	validateSlug(errs, draft.Slug)
	validateTags(errs, draft.Tags, kind.TagLimit())

	if kind == domain.KindResearch {
		validateMediaURL(errs, draft.MediaURL)
		if target == domain.StatusActive || target == domain.StatusCompleted {
			if plainLen(draft.Body) < bodyMinLen {
				errs[FieldBody] = validation.NewError(
					"editorial.validation.body_too_short",
					"description must contain at least 50 characters of text before going live")
			}
		}
		if target == domain.StatusCompleted && draft.FinishAt == nil {
			errs[FieldFinishAt] = validation.NewError(
				"editorial.validation.finish_required",
				"a finish date is required to complete a project")
		}
		if draft.FinishAt != nil && draft.StartAt != nil && !draft.FinishAt.After(*draft.StartAt) {
			errs[FieldFinishAt] = validation.NewError(
				"editorial.validation.finish_before_start",
				"finish date must be after the start date")
		}
	}

	if kind == domain.KindNews && target == domain.StatusScheduled {
		switch {
		case draft.ScheduleAt == nil:
			errs[FieldScheduleAt] = validation.NewError(
				"editorial.validation.schedule_required",
				"a publication date is required to schedule")
		case !draft.ScheduleAt.After(now):
			errs[FieldScheduleAt] = validation.NewError(
				"editorial.validation.schedule_in_past",
				"the publication date must be in the future")
		}
	}

	if len(opts.MetadataSchema) > 0 {
		if err := ValidatePayload(opts.MetadataSchema, draft.Metadata); err != nil {
			errs[FieldMetadata] = validation.NewError(
				"editorial.validation.metadata_invalid", err.Error())
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Warnings returns non-blocking advisories for the requested transition.
// Archiving a research project without a finish date is flagged here rather
// than rejected.
func Warnings(draft *domain.Draft, kind domain.Kind, target domain.Status) []Warning {
	if draft == nil || kind != domain.KindResearch {
		return nil
	}
	if target == domain.StatusArchived && draft.FinishAt == nil {
		return []Warning{{
			Field:   FieldFinishAt,
			Message: "archiving without a finish date",
		}}
	}
	return nil
}

func validateTitle(errs validation.Errors, title string) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		errs[FieldTitle] = validation.NewError("editorial.validation.title_required", "title is required")
		return
	}
	if n := utf8.RuneCountInString(trimmed); n < titleMinLen || n > TitleMaxLen {
		errs[FieldTitle] = validation.NewError(
			"editorial.validation.title_length",
			"title must be between 4 and 140 characters")
	}
}

func validateSummary(errs validation.Errors, summary string) {
	trimmed := strings.TrimSpace(summary)
	if trimmed == "" {
		errs[FieldSummary] = validation.NewError("editorial.validation.summary_required", "summary is required")
		return
	}
	if n := utf8.RuneCountInString(trimmed); n < summaryMinLen || n > summaryMaxLen {
		errs[FieldSummary] = validation.NewError(
			"editorial.validation.summary_length",
			"summary must be between 30 and 400 characters")
	}
}

func validateSlug(errs validation.Errors, slug string) {
	if strings.TrimSpace(slug) == "" {
		errs[FieldSlug] = validation.NewError("editorial.validation.slug_required", "slug is required")
	}
}

func validateTags(errs validation.Errors, tags []string, limit int) {
	if len(tags) > limit {
		errs[FieldTags] = validation.NewError(
			"editorial.validation.tags_limit",
			"too many tags for this content kind")
		return
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			errs[FieldTags] = validation.NewError(
				"editorial.validation.tags_empty",
				"tags cannot be empty")
			return
		}
	}
}

// validateMediaURL accepts absolute http(s) URLs and recognized relative
// asset paths.
func validateMediaURL(errs validation.Errors, raw string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		errs[FieldMediaURL] = validation.NewError(
			"editorial.validation.media_required",
			"a cover image is required")
		return
	}
	if isAssetPath(trimmed) {
		return
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs[FieldMediaURL] = validation.NewError(
			"editorial.validation.media_invalid",
			"the cover image must be an absolute URL or an asset path")
	}
}

func isAssetPath(value string) bool {
	return strings.HasPrefix(value, "/assets/") ||
		strings.HasPrefix(value, "assets/") ||
		strings.HasPrefix(value, "./")
}

func plainLen(html string) int {
	return utf8.RuneCountInString(PlainText(html))
}
