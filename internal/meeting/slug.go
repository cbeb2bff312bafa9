package meeting

import (
	"regexp"
	"strings"
)

const (
	maxSlugLen   = 30
	fallbackSlug = "decision"
)

// domainTerms transliterates governance vocabulary that appears
// constantly in decision statements. Applied before generic
// normalization so the resulting file names stay legible.
var domainTerms = []struct {
	term string
	repl string
}{
	{"決定", "kettei"},
	{"採用", "saiyou"},
	{"廃止", "haishi"},
	{"変更", "henkou"},
	{"延期", "enki"},
	{"中止", "chuushi"},
	{"導入", "dounyuu"},
	{"移行", "ikou"},
	{"継続", "keizoku"},
	{"承認", "shounin"},
}

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns free text into a filesystem-safe, human-legible slug:
// domain-term transliteration, lowercasing, non-alphanumeric runs
// collapsed to single hyphens, trimmed, truncated to 30 characters.
// Empty input (or input that normalizes to nothing) yields "decision".
//
// The slug alone is not globally unique; callers pair it with the
// meeting date to form a file name. Same-day same-slug collisions are
// resolved by the commit path's conditional write.
func Slugify(content string) string {
	s := content
	for _, t := range domainTerms {
		s = strings.ReplaceAll(s, t.term, " "+t.repl+" ")
	}
	s = strings.ToLower(s)
	s = nonSlugRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
		s = strings.TrimRight(s, "-")
	}
	if s == "" {
		return fallbackSlug
	}
	return s
}
