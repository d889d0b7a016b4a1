package match

import (
	"math"
	"sort"
)

// Cosine returns the cosine similarity of two vectors in [-1, 1]. It returns
// 0.0 when either vector has zero norm or the lengths differ, so callers
// never divide by zero.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0.0
	}
	return dot / denom
}

// Ranked pairs an item with its similarity score.
type Ranked[T any] struct {
	Item  T
	Score float64
}

// RankBySimilarity scores every item against the query vector and returns
// them in descending score order, truncated to limit. Ties keep input order.
// Vectors and items are matched by index; a pool smaller than limit is fine.
func RankBySimilarity[T any](query []float64, items []T, vectors [][]float64, limit int) []Ranked[T] {
	n := len(items)
	if len(vectors) < n {
		n = len(vectors)
	}

	scored := make([]Ranked[T], 0, n)
	for i := 0; i < n; i++ {
		scored = append(scored, Ranked[T]{Item: items[i], Score: Cosine(query, vectors[i])})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// RoundScore rounds a similarity score to 4 decimal places for API output.
func RoundScore(s float64) float64 {
	return math.Round(s*10000) / 10000
}
