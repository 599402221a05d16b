// Package search implements the multi-strategy relevance engine behind the
// product search tool. Three independent scorers (full-text, all-terms,
// trigram similarity) run per candidate over a precomputed normalized text
// projection; a weighted combiner merges them into one deterministic ranking.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining diacritical marks after NFD decomposition, so
// "algodão" folds to "algodao".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds text to its canonical comparable form: lowercased, accents
// stripped, surrounding whitespace trimmed, internal whitespace runs
// collapsed to single spaces. Total on any input, including the empty string.
func Normalize(text string) string {
	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		folded = text
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Tokenize splits canonical text into its non-empty terms, preserving order
// and multiplicity.
func Tokenize(canonical string) []string {
	return strings.Fields(canonical)
}

// SearchableText builds the normalized projection stored alongside each
// product. Blank fields contribute nothing.
func SearchableText(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := Normalize(f); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, " ")
}
