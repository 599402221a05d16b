package search

import (
	"strings"
)

// AllTermsScorer is the precision signal: 1 when every query term occurs
// somewhere in the candidate's searchable text, 0 otherwise. Substring
// matching keeps partial words in play ("algod" hits "algodao"). No query
// terms is vacuously a match.
type AllTermsScorer struct{}

func (AllTermsScorer) Score(q Query, text string) float64 {
	if len(q.Terms) == 0 {
		return 1
	}
	if text == "" {
		return 0
	}
	for _, term := range q.Terms {
		if !strings.Contains(text, term) {
			return 0
		}
	}
	return 1
}
