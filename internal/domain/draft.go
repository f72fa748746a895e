package domain

import "time"

// Draft is the in-memory editing shape shared by both content kinds. A draft
// is created when an editor opens (empty defaults or a deep copy of a
// persisted item plus its version token), mutated only by the session that
// opened it, and either discarded or committed.
type Draft struct {
	Title   string
	Slug    string
	Summary string
	Body    string
	Tags    []string

	// SlugEdited marks the slug as manually set. Once raised, title edits
	// never overwrite the slug again.
	SlugEdited bool

	// MediaURL is required for research projects.
	MediaURL string

	// StartAt and FinishAt bound a research project's run.
	StartAt  *time.Time
	FinishAt *time.Time

	// ScheduleAt is the requested publication instant for scheduled news.
	ScheduleAt *time.Time

	Metadata map[string]any

	Status Status

	// Token is the last known version token for the persisted item backing
	// this draft. Empty for drafts that were never persisted.
	Token VersionToken
}

// Clone returns a deep copy so snapshots handed to asynchronous savers do not
// alias the editor's live draft.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	copied := *d
	if len(d.Tags) > 0 {
		copied.Tags = append([]string(nil), d.Tags...)
	}
	if d.StartAt != nil {
		t := *d.StartAt
		copied.StartAt = &t
	}
	if d.FinishAt != nil {
		t := *d.FinishAt
		copied.FinishAt = &t
	}
	if d.ScheduleAt != nil {
		t := *d.ScheduleAt
		copied.ScheduleAt = &t
	}
	if len(d.Metadata) > 0 {
		copied.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			copied.Metadata[k] = v
		}
	}
	return &copied
}

// SetSlug records a manual slug edit. The override is one-way: subsequent
// title changes leave the slug untouched.
func (d *Draft) SetSlug(slug string) {
	d.Slug = slug
	d.SlugEdited = true
}
