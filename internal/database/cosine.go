package database

import "math"

// CosineDistance computes the cosine distance between two face embeddings,
// matching the `<=>` operator used by the pgvector queries so the in-memory
// index and PostgreSQL agree on similarity scores. The result ranges from 0
// (same face angle) to 2 (opposite). Mismatched lengths and zero vectors get
// the maximum distance rather than an error; such embeddings can never match.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}

	var dot, sumA, sumB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		sumA += ai * ai
		sumB += bi * bi
	}
	if sumA == 0 || sumB == 0 {
		return 2.0
	}

	similarity := dot / math.Sqrt(sumA*sumB)
	// Float rounding can push the ratio slightly outside [-1, 1].
	similarity = math.Max(-1, math.Min(1, similarity))

	return 1 - similarity
}
