package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/deptworks/go-editorial/internal/domain"
)

// Item is the persisted record for both content kinds. News articles use
// PublishAt/PublishedAt; research projects use StartAt/FinishAt and MediaURL.
type Item struct {
	bun.BaseModel `bun:"table:content_items,alias:ci"`

	ID      uuid.UUID   `bun:",pk,type:uuid"            json:"id"`
	Kind    domain.Kind `bun:"kind,notnull"             json:"kind"`
	Title   string      `bun:"title,notnull"            json:"title"`
	Slug    string      `bun:"slug,notnull"             json:"slug"`
	// SlugEdited records a manual slug override so title edits stop
	// regenerating the slug.
	SlugEdited bool `bun:"slug_edited,notnull,default:false" json:"slug_edited"`
	Summary string      `bun:"summary,notnull"          json:"summary"`
	Body    string      `bun:"body,type:text"           json:"body"`
	Tags    []string    `bun:"tags,type:jsonb"          json:"tags,omitempty"`
	Status  string      `bun:"status,notnull,default:'draft'" json:"status"`

	MediaURL *string `bun:"media_url" json:"media_url,omitempty"`

	PublishAt   *time.Time `bun:"publish_at,nullzero"   json:"publish_at,omitempty"`
	PublishedAt *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	StartAt     *time.Time `bun:"start_at,nullzero"     json:"start_at,omitempty"`
	FinishAt    *time.Time `bun:"finish_at,nullzero"    json:"finish_at,omitempty"`

	Metadata map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`

	// Version is the stored optimistic-lock token. SQL backends compare it
	// as a plain string: timestamp literals are not stable across drivers,
	// so the compare-and-set never matches on the raw updated_at column.
	Version string `bun:"version,notnull,default:''" json:"-"`

	CreatedBy uuid.UUID  `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy uuid.UUID  `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero"          json:"deleted_at,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// VersionToken returns the optimistic-lock token for the record's current
// stored version.
func (i *Item) VersionToken() domain.VersionToken {
	if i == nil {
		return ""
	}
	if i.Version != "" {
		return domain.ParseToken(i.Version)
	}
	return domain.TokenFromTime(i.UpdatedAt)
}

// Draft projects the persisted record into an editing draft carrying the
// current version token. The projection is a deep copy.
func (i *Item) Draft() *domain.Draft {
	if i == nil {
		return nil
	}
	draft := &domain.Draft{
		Title:      i.Title,
		Slug:       i.Slug,
		SlugEdited: i.SlugEdited,
		Summary:    i.Summary,
		Body:       i.Body,
		Status:     domain.NormalizeStatus(i.Status),
		Token:      i.VersionToken(),
	}
	if len(i.Tags) > 0 {
		draft.Tags = append([]string(nil), i.Tags...)
	}
	if i.MediaURL != nil {
		draft.MediaURL = *i.MediaURL
	}
	if i.PublishAt != nil {
		t := *i.PublishAt
		draft.ScheduleAt = &t
	}
	if i.StartAt != nil {
		t := *i.StartAt
		draft.StartAt = &t
	}
	if i.FinishAt != nil {
		t := *i.FinishAt
		draft.FinishAt = &t
	}
	if len(i.Metadata) > 0 {
		draft.Metadata = make(map[string]any, len(i.Metadata))
		for k, v := range i.Metadata {
			draft.Metadata[k] = v
		}
	}
	return draft
}

// Clone deep-copies the record so repositories never hand out aliased state.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	copied := *i
	if len(i.Tags) > 0 {
		copied.Tags = append([]string(nil), i.Tags...)
	}
	if i.MediaURL != nil {
		v := *i.MediaURL
		copied.MediaURL = &v
	}
	copied.PublishAt = cloneTime(i.PublishAt)
	copied.PublishedAt = cloneTime(i.PublishedAt)
	copied.StartAt = cloneTime(i.StartAt)
	copied.FinishAt = cloneTime(i.FinishAt)
	copied.DeletedAt = cloneTime(i.DeletedAt)
	if len(i.Metadata) > 0 {
		copied.Metadata = make(map[string]any, len(i.Metadata))
		for k, v := range i.Metadata {
			copied.Metadata[k] = v
		}
	}
	return &copied
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
