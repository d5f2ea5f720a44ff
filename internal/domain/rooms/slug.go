package rooms

import (
	"regexp"
	"strings"
)

const maxSlugRunes = 90

var (
	slugSpaces  = regexp.MustCompile(`[\s　]+`)
	slugInvalid = regexp.MustCompile(`[^\p{Hiragana}\p{Katakana}\p{Han}0-9a-z\-_]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify derives a channel name from a scenario name: lowercase, whitespace
// (including ideographic spaces) to dashes, CJK and alphanumerics kept,
// everything else dashed out, capped at 90 runes. Falls back to "scenario"
// when nothing survives.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "scenario"
	}
	if runes := []rune(s); len(runes) > maxSlugRunes {
		s = strings.Trim(string(runes[:maxSlugRunes]), "-")
	}
	return s
}
