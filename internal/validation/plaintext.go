package validation

import (
	"html"
	"strings"
)

// PlainText strips tags and decodes entities from an HTML fragment, returning
// the visible text with whitespace collapsed. It is a length heuristic, not a
// sanitizer: the output is never rendered.
func PlainText(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	inTag := false
	for _, r := range input {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	decoded := html.UnescapeString(b.String())
	return strings.Join(strings.Fields(decoded), " ")
}
