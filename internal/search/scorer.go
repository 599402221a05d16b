package search

// Scorer produces one relevance signal for a candidate's searchable text.
// Implementations are pure functions; the engine evaluates all of them per
// candidate and hands the results to the Combiner.
type Scorer interface {
	Score(q Query, text string) float64
}
