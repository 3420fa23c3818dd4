package filter

import (
	"regexp"
	"strings"
)

const Mask = "****"

// DefaultBannedWords is the brand-safety list used when none is configured.
var DefaultBannedWords = []string{"profanity", "inappropriate", "sensitive-topic"}

// Filter masks whole-word, case-insensitive occurrences of banned terms.
// The zero value and a Filter built from an empty list pass text through.
type Filter struct {
	re *regexp.Regexp
}

func New(words []string) *Filter {
	var quoted []string
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return &Filter{}
	}
	return &Filter{re: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)}
}

func (f *Filter) Apply(text string) string {
	if f == nil || f.re == nil || text == "" {
		return text
	}
	return f.re.ReplaceAllLiteralString(text, Mask)
}
