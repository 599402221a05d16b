package search

import (
	"strings"
)

// SimilarityScorer is the recall signal: trigram overlap between the whole
// query and the searchable text. It keeps typo'd and transposed queries
// ranking when the exact-match scorers return zero.
type SimilarityScorer struct{}

func (SimilarityScorer) Score(q Query, text string) float64 {
	return TrigramSimilarity(q.Normalized, text)
}

// TrigramSimilarity returns the Jaccard overlap of the two strings' trigram
// sets, in [0,1]. Identical non-empty strings score 1; an empty side scores
// 0. Words are padded with two leading and one trailing space before
// extraction, the pg_trgm scheme, so word starts weigh more than interiors.
func TrigramSimilarity(a, b string) float64 {
	ta := trigramSet(a)
	tb := trigramSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

func trigramSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		padded := []rune("  " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}
