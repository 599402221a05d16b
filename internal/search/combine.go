package search

// Weights configures how the three strategy scores merge into one composite,
// plus the floor below which a candidate is dropped entirely. Immutable after
// construction; tests vary weights without touching globals.
type Weights struct {
	FullText       float64
	AllTerms       float64
	Similarity     float64
	RelevanceFloor float64
}

// DefaultWeights returns the tuned production weighting. AllTerms carries
// twice the weight of either graded signal: full-text and similarity each
// stay within [0,1], so 2.0 guarantees a candidate containing every query
// term outranks any candidate that does not, whatever their graded scores.
// The floor keeps single-trigram coincidences out of results while letting
// genuine typo matches (similarity around 0.15-0.3) through.
func DefaultWeights() Weights {
	return Weights{
		FullText:       1.0,
		AllTerms:       2.0,
		Similarity:     1.0,
		RelevanceFloor: 0.05,
	}
}

// Combiner merges per-strategy scores into a composite.
type Combiner struct {
	weights Weights
}

func NewCombiner(w Weights) *Combiner {
	return &Combiner{weights: w}
}

// Combine returns the weighted sum of the three signals.
func (c *Combiner) Combine(fulltext, allTerms, similarity float64) float64 {
	return c.weights.FullText*fulltext +
		c.weights.AllTerms*allTerms +
		c.weights.Similarity*similarity
}

// Relevant reports whether a composite clears the floor. The floor is
// exclusive: a candidate scoring zero on all strategies never appears.
func (c *Combiner) Relevant(composite float64) bool {
	return composite > c.weights.RelevanceFloor
}
