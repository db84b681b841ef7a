package retrieval

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
)

var ErrDimensionMismatch = goerr.New("embedding dimensionality mismatch")

// CosineSimilarity returns dot(a,b) / (|a|*|b|). A zero-norm vector
// yields 0. Mismatched dimensionality is a caller bug, not a runtime
// condition, and returns an error.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, goerr.Wrap(ErrDimensionMismatch, "cannot compare vectors",
			goerr.V("len_a", len(a)), goerr.V("len_b", len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
