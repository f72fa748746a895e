package slugs

import (
	"strings"
	"unicode"

	goslug "github.com/goliatone/go-slug"

	"github.com/deptworks/go-editorial/internal/domain"
)

// Generate derives a URL-safe identifier from a title: lower-cased,
// diacritics folded, non [a-z0-9-] characters removed, whitespace and
// repeated hyphens collapsed. Deterministic and idempotent.
func Generate(title string) string {
	folded := foldASCII(strings.ToLower(strings.TrimSpace(title)))

	var b strings.Builder
	b.Grow(len(folded))
	prevHyphen := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	candidate := strings.Trim(b.String(), "-")
	if candidate == "" {
		return ""
	}

	// Canonicalize through the shared normalizer so slugs produced here
	// always satisfy the same rules the rest of the stack validates with.
	if normalized, err := goslug.Normalize(candidate); err == nil && normalized != "" {
		return normalized
	}
	return candidate
}

// IsValid reports whether the value already satisfies the slug rules.
func IsValid(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	return goslug.IsValid(value)
}

// Refresh re-derives the draft slug from its title unless the slug has been
// manually edited. The manual override is one-way: once set, title edits
// never overwrite the slug.
func Refresh(draft *domain.Draft) {
	if draft == nil || draft.SlugEdited {
		return
	}
	draft.Slug = Generate(draft.Title)
}

// foldASCII transliterates accented Latin runes to their ASCII base so titles
// like "Seminário de Física" slug to "seminario-de-fisica".
func foldASCII(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if folded, ok := asciiFold[r]; ok {
			b.WriteString(folded)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var asciiFold = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a",
	'ç': "c", 'è': "e", 'é': "e", 'ê': "e", 'ë': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ñ': "n", 'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o", 'ø': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u",
	'ý': "y", 'ÿ': "y",
	'æ': "ae", 'œ': "oe", 'ß': "ss", 'ð': "d", 'þ': "th",
	'š': "s", 'ž': "z", 'ć': "c", 'č': "c", 'đ': "d", 'ł': "l",
	'ř': "r", 'ş': "s", 'ţ': "t", 'ů': "u", 'ě': "e", 'ğ': "g",
	'ı': "i", 'ą': "a", 'ę': "e", 'ń': "n", 'ś': "s", 'ź': "z", 'ż': "z",
}
