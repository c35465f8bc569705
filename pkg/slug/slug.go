package slug

import (
	"regexp"
	"strings"
)

// maxLen ограничивает длину слага размером колонки routines.slug.
const maxLen = 250

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Make преобразует произвольное название в URL-безопасный слаг:
// нижний регистр, дефисы вместо пробелов и подчёркиваний, только [a-z0-9-].
// Уникальность обеспечивается на уровне хранилища, а не здесь.
func Make(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = invalidChars.ReplaceAllString(s, "")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	return s
}
