package search

// Query is one parsed search request. Normalization and tokenization happen
// once here, not per candidate.
type Query struct {
	Raw        string
	Normalized string
	Terms      []string
}

// NewQuery normalizes and tokenizes a raw query string.
func NewQuery(raw string) Query {
	n := Normalize(raw)
	return Query{
		Raw:        raw,
		Normalized: n,
		Terms:      Tokenize(n),
	}
}

// Empty reports whether the query folded to nothing. An empty query switches
// the engine to match-all rather than matching nothing.
func (q Query) Empty() bool {
	return q.Normalized == ""
}
