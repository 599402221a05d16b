package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllTermsScore(t *testing.T) {
	s := AllTermsScorer{}

	tests := []struct {
		name  string
		query string
		text  string
		want  float64
	}{
		{"every term present", "algodao toalha", "toalha de banho 100% algodao", 1},
		{"one term missing", "algodao rosto", "toalha de banho 100% algodao", 0},
		{"partial word counts", "algod toalh", "toalha de banho 100% algodao", 1},
		{"single term absent", "cortina", "toalha de banho", 0},
		{"duplicate terms are redundant", "toalha toalha", "toalha de rosto", 1},
		{"empty query is vacuously true", "", "toalha de rosto", 1},
		{"empty text never matches", "toalha", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(NewQuery(tt.query), tt.text))
		})
	}
}
