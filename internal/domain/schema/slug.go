package schema

import (
	"regexp"
	"strings"
)

var (
	// \p{Z} covers the Unicode spaces \s leaves out, such as U+00A0
	nonSlugChars   = regexp.MustCompile(`[^\w\s\p{Z}-]`)
	whitespaceRuns = regexp.MustCompile(`[\s\p{Z}]+`)
	hyphenRuns     = regexp.MustCompile(`-+`)
)

// GenerateSlug turns a title into a lowercase, hyphen-delimited identifier.
// Degenerate titles (only punctuation, only whitespace) yield "".
func GenerateSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
