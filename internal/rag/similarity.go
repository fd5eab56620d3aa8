package rag

import "math"

// SimilaritySentinel is returned for vectors that cannot be compared.
// It ranks below any real score, so such candidates are never preferred.
const SimilaritySentinel = -1.0

// CosineSimilarity returns dot(a,b) / (|a|*|b|) in [-1, 1].
// Nil, empty or unequal-length vectors and zero-magnitude vectors yield
// SimilaritySentinel. It never panics.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return SimilaritySentinel
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return SimilaritySentinel
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return SimilaritySentinel
	}
	// rounding can push parallel vectors just past 1
	return math.Max(-1, math.Min(1, sim))
}
