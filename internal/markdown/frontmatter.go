// Package markdown imports content drafts from Markdown files with YAML
// frontmatter. Imports run through the lifecycle orchestrator so every file
// passes the same validation path as editor input.
package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the structured metadata extracted from a Markdown file.
type FrontMatter struct {
	Title    string
	Slug     string
	Summary  string
	Tags     []string
	MediaURL string
	Date     time.Time
	Custom   map[string]any
}

type frontMatterEnvelope struct {
	Title    string         `yaml:"title"`
	Slug     string         `yaml:"slug"`
	Summary  string         `yaml:"summary"`
	Tags     []string       `yaml:"tags"`
	MediaURL string         `yaml:"media_url"`
	Date     time.Time      `yaml:"date"`
	Custom   map[string]any `yaml:",inline"`
}

// ParseFrontMatter extracts metadata and the Markdown body from the supplied
// source bytes. The body is returned without frontmatter delimiters.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	out := FrontMatter{
		Title:    meta.Title,
		Slug:     meta.Slug,
		Summary:  meta.Summary,
		MediaURL: meta.MediaURL,
		Date:     meta.Date,
	}
	if len(meta.Tags) > 0 {
		out.Tags = append([]string(nil), meta.Tags...)
	}
	if len(meta.Custom) > 0 {
		out.Custom = make(map[string]any, len(meta.Custom))
		for k, v := range meta.Custom {
			out.Custom[k] = v
		}
	}
	return out, body, nil
}
