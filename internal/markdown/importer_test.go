package markdown_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"

	"github.com/deptworks/go-editorial/internal/catalog"
	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/internal/lifecycle"
	"github.com/deptworks/go-editorial/internal/markdown"
	"github.com/deptworks/go-editorial/internal/session"
	"github.com/deptworks/go-editorial/internal/workflow"
)

const newsFile = `---
title: Department Open Day
slug: open-day
summary: Doors open for prospective students and their families this spring.
tags:
  - events
  - outreach
---

# Open Day

Come and see the **labs**.
`

func newImportFixture(t *testing.T) (*markdown.Importer, lifecycle.Service, *session.Session) {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	repo := catalog.NewMemoryRepository(catalog.WithMemoryClock(clock))
	service := lifecycle.New(repo, workflow.New(workflow.WithClock(clock)), lifecycle.WithClock(clock))
	sess := session.New(uuid.New())
	return markdown.NewImporter(service), service, sess
}

func TestParseFrontMatter(t *testing.T) {
	meta, body, err := markdown.ParseFrontMatter([]byte(newsFile))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Title != "Department Open Day" || meta.Slug != "open-day" {
		t.Fatalf("unexpected frontmatter: %+v", meta)
	}
	if len(meta.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", meta.Tags)
	}
	if !strings.Contains(string(body), "# Open Day") {
		t.Fatalf("body should drop delimiters, got %q", body)
	}
}

func TestRendererProducesHTML(t *testing.T) {
	out, err := markdown.NewRenderer().Render([]byte("Come and see the **labs**."))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "<strong>labs</strong>") {
		t.Fatalf("expected rendered emphasis, got %q", out)
	}
}

func TestImportCreatesDraft(t *testing.T) {
	importer, service, sess := newImportFixture(t)

	item, err := importer.Import(context.Background(), sess, domain.KindNews, []byte(newsFile))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if item.Status != string(domain.StatusDraft) {
		t.Fatalf("imports must start in draft, got %s", item.Status)
	}
	if item.Slug != "open-day" {
		t.Fatalf("expected frontmatter slug, got %q", item.Slug)
	}
	if !strings.Contains(item.Body, "<strong>labs</strong>") {
		t.Fatalf("expected rendered body, got %q", item.Body)
	}

	stored, err := service.GetBySlug(context.Background(), domain.KindNews, "open-day")
	if err != nil || stored.ID != item.ID {
		t.Fatalf("imported item not retrievable: %v", err)
	}
}

func TestImportCarriesAuthoredDateAndSlugOverride(t *testing.T) {
	importer, _, sess := newImportFixture(t)

	source := `---
title: Robotics Lab Reopens
slug: robotics-lab
summary: The robotics lab reopens after a semester of renovation work.
date: 2026-02-14T00:00:00Z
---

The lab reopens with new equipment.
`
	item, err := importer.Import(context.Background(), sess, domain.KindNews, []byte(source))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := item.Metadata["date"]; got != "2026-02-14T00:00:00Z" {
		t.Fatalf("expected authored date in metadata, got %v", got)
	}
	if !item.SlugEdited {
		t.Fatalf("frontmatter slug should mark the slug as manually set")
	}
}

func TestImportIsIdempotent(t *testing.T) {
	importer, _, sess := newImportFixture(t)

	first, err := importer.Import(context.Background(), sess, domain.KindNews, []byte(newsFile))
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := importer.Import(context.Background(), sess, domain.KindNews, []byte(newsFile))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("re-import must resolve to the same item")
	}
}

func TestImportDirReportsFailuresWithoutAborting(t *testing.T) {
	importer, _, sess := newImportFixture(t)

	fsys := fstest.MapFS{
		"content/open-day.md": &fstest.MapFile{Data: []byte(newsFile)},
		"content/broken.md": &fstest.MapFile{Data: []byte(`---
title: No
summary: too short
---
body
`)},
		"content/notes.txt": &fstest.MapFile{Data: []byte("ignored")},
	}

	items, err := importer.ImportDir(context.Background(), sess, domain.KindNews, fsys, "content")
	if err == nil {
		t.Fatalf("expected aggregate failure for broken file")
	}
	if len(items) != 1 || items[0].Slug != "open-day" {
		t.Fatalf("expected the valid file imported, got %v", items)
	}
}
