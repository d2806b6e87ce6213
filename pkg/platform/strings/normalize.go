// Package strings provides string manipulation utilities shared by the
// registry's matching and validation logic.
package strings

import (
	"strings"
)

// corporateSuffixes are legal-form words that carry no identity signal when
// comparing company names. Matched as whole normalized tokens, longest first.
var corporateSuffixes = []string{
	"corporation", "incorporated", "company", "holdings", "limited",
	"group", "corp", "inc", "llc", "ltd", "plc", "co",
}

// NormalizeKey lowercases s and strips every non-alphanumeric rune. Two names
// that normalize to the same key are the same name for matching purposes.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SignificantWords splits name on whitespace and returns the lowercased words
// longer than minLen. Short words ("of", "the", "co") are noise for
// similarity queries.
func SignificantWords(name string, minLen int) []string {
	fields := strings.Fields(strings.ToLower(name))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,&()-")
		if len(f) > minLen {
			words = append(words, f)
		}
	}
	return words
}

// StripCorporateSuffixes removes trailing legal-form suffixes from an already
// normalized key ("applesincorporated" -> "apples"). Repeats until no suffix
// matches so "X corp inc" reduces fully.
func StripCorporateSuffixes(normalized string) string {
	stripped := normalized
	for {
		before := stripped
		for _, suffix := range corporateSuffixes {
			stripped = strings.TrimSuffix(stripped, suffix)
		}
		if stripped == before {
			return stripped
		}
	}
}

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
