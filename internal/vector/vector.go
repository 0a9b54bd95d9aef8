// Package vector provides the similarity math shared by the semantic
// refiner and the in-memory store.
package vector

import "math"

// Cosine returns the cosine similarity of two vectors. Mismatched lengths
// or zero vectors score 0 rather than erroring; callers validate dimensions
// at the embedding boundary.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
