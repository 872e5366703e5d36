// Package keyword implements denylist term matching against free-form
// message text.
//
// Matching is word-boundary aware: a term only matches when it is not
// directly adjacent to another letter or digit, so "ass" does not flag
// "classic". Terms which can not be evaluated as a boundary pattern fall
// back to plain substring containment for that term only.
package keyword

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases and trims a term or message text, and strips
// combining marks (accents) so stored terms and scanned text compare
// consistently across locales.
func Normalize(s string) string {
	// this transform chain needs to be re-created on every call to prevent a race condition
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	lower := strings.ToLower(strings.TrimSpace(s))
	out, _, err := transform.String(normFunc, lower)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		return lower
	}
	return out
}

// NormalizeAll normalizes a list of terms, dropping any that come out empty.
func NormalizeAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		n := Normalize(t)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// The boundary pattern intentionally embeds the raw term. Some terms
// contain characters that do not compile as a regular expression; those
// take the substring fallback path in Match.
func boundaryPattern(term string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?:\A|[^\pL\pN])` + term + `(?:[^\pL\pN]|\z)`)
}

// MatchTerm reports whether a single normalized term occurs in normalized
// text at a word boundary, or anywhere as a substring when the boundary
// pattern can not be compiled for that term (false positive preferred over
// silently skipping a term).
func MatchTerm(text, term string) bool {
	re, err := boundaryPattern(term)
	if err != nil {
		return strings.Contains(text, term)
	}
	return re.MatchString(text)
}

// Match reports whether any term in the list occurs in the text, stopping
// at the first hit. Empty text never matches.
func Match(text string, terms []string) bool {
	return MatchAny(text, terms) != ""
}

// MatchAny returns the first term which occurs in the text, or empty
// string when no term matches.
func MatchAny(text string, terms []string) string {
	if text == "" || len(terms) == 0 {
		return ""
	}
	haystack := Normalize(text)
	for _, raw := range terms {
		term := Normalize(raw)
		if term == "" {
			continue
		}
		if MatchTerm(haystack, term) {
			return term
		}
	}
	return ""
}
