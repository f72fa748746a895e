package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/deptworks/go-editorial/internal/catalog"
	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/internal/identity"
	"github.com/deptworks/go-editorial/internal/lifecycle"
	"github.com/deptworks/go-editorial/internal/logging"
	"github.com/deptworks/go-editorial/internal/session"
	"github.com/deptworks/go-editorial/internal/slugs"
	"github.com/deptworks/go-editorial/pkg/interfaces"
)

// Importer turns Markdown files into content drafts through the lifecycle
// orchestrator.
type Importer struct {
	service  lifecycle.Service
	renderer *Renderer
	logger   interfaces.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithLogger overrides the default module logger.
func WithLogger(logger interfaces.Logger) ImporterOption {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewImporter constructs an importer over the lifecycle service.
func NewImporter(service lifecycle.Service, opts ...ImporterOption) *Importer {
	imp := &Importer{
		service:  service,
		renderer: NewRenderer(),
		logger:   logging.MarkdownLogger(nil),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Import parses a single Markdown source and creates a draft for it. The
// returned item always starts in draft status; publishing an import is an
// explicit follow-up transition.
func (i *Importer) Import(ctx context.Context, sess *session.Session, kind domain.Kind, source []byte) (*catalog.Item, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	rendered, err := i.renderer.Render(body)
	if err != nil {
		return nil, err
	}

	draft := domain.Draft{
		Title:    meta.Title,
		Summary:  meta.Summary,
		Body:     string(rendered),
		MediaURL: meta.MediaURL,
		Metadata: meta.Custom,
	}
	if len(meta.Tags) > 0 {
		draft.Tags = append([]string(nil), meta.Tags...)
	}
	if !meta.Date.IsZero() {
		if draft.Metadata == nil {
			draft.Metadata = make(map[string]any, 1)
		}
		draft.Metadata["date"] = meta.Date.Format(time.RFC3339)
	}
	if slug := strings.TrimSpace(meta.Slug); slug != "" {
		// An explicit front matter slug counts as a manual override.
		draft.SetSlug(slugs.Generate(slug))
	} else {
		draft.Slug = slugs.Generate(meta.Title)
	}

	// Re-importing a file that already produced an item is a no-op.
	if existing, err := i.service.GetBySlug(ctx, kind, draft.Slug); err == nil {
		i.logger.Debug("import already present", "kind", kind, "slug", draft.Slug)
		return existing, nil
	} else if !lifecycle.IsNotFound(err) {
		return nil, err
	}

	item, err := i.service.Create(ctx, sess, lifecycle.CreateRequest{
		Kind:  kind,
		Draft: draft,
		ID:    identity.ItemUUID(string(kind), draft.Slug),
	})
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", meta.Title, err)
	}
	i.logger.Info("imported markdown draft", "kind", kind, "item_id", item.ID, "slug", item.Slug)
	return item, nil
}

// ImportDir walks dir inside fsys and imports every .md file. Files that fail
// validation are reported together after the walk so one bad file does not
// abort the batch.
func (i *Importer) ImportDir(ctx context.Context, sess *session.Session, kind domain.Kind, fsys fs.FS, dir string) ([]*catalog.Item, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read import dir: %w", err)
	}

	var items []*catalog.Item
	var failures []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			continue
		}
		name := path.Join(dir, entry.Name())
		source, err := fs.ReadFile(fsys, name)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		item, err := i.Import(ctx, sess, kind, source)
		if err != nil {
			i.logger.Warn("skipping markdown file", "file", name, "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		items = append(items, item)
	}

	if len(failures) > 0 {
		return items, fmt.Errorf("markdown import: %d file(s) failed: %s", len(failures), strings.Join(failures, "; "))
	}
	return items, nil
}
