package search

import (
	"strings"
)

const (
	// tfSaturation damps repeated occurrences of a term: the second and
	// third hit add less than the first.
	tfSaturation = 1.5
	// lengthPivot sets the document length at which density drops to half.
	lengthPivot = 10.0
)

// FullTextScorer ranks candidates by whole-word overlap with the query,
// rewarding term frequency and shorter documents. Each matched distinct term
// contributes at least 1 before normalization, so a candidate matching
// strictly more query terms always scores higher than one matching fewer,
// frequencies and length held equal. Zero overlap scores 0.
type FullTextScorer struct{}

// Score returns a value in [0,1]: 0 on no overlap, above 0.5 when every
// distinct query term matched.
func (FullTextScorer) Score(q Query, text string) float64 {
	if len(q.Terms) == 0 || text == "" {
		return 0
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[stem(w)]++
	}
	density := lengthPivot / (lengthPivot + float64(len(words)))

	distinct := make(map[string]struct{}, len(q.Terms))
	for _, t := range q.Terms {
		distinct[stem(t)] = struct{}{}
	}

	var sum float64
	for s := range distinct {
		tf := float64(freq[s])
		if tf == 0 {
			continue
		}
		sum += 1 + (tf/(tf+tfSaturation))*density
	}
	if sum == 0 {
		return 0
	}
	return sum / (2 * float64(len(distinct)))
}

// stem folds regular plurals onto their singular ("toalhas" → "toalha"), the
// inflection that actually shows up in catalog queries.
func stem(w string) string {
	if len(w) > 2 && strings.HasSuffix(w, "s") {
		return w[:len(w)-1]
	}
	return w
}
