// Package search ranks catalog rows against a query vector by exact
// brute-force cosine similarity. Every call is a fresh O(N·D) scan over the
// whole vector matrix; there is no persistent index state. That cost is
// deliberate at catalog sizes of a few thousand rows, and the TopK contract
// is stable so an approximate-nearest-neighbor structure could replace the
// scan without changing any caller.
package search

import (
	"math"
	"sort"
)

// Result is one ranked row: the index into the scanned matrix plus its score.
type Result struct {
	Row   int
	Score float64
}

// TopK returns the indices of the k rows most similar to the query vector,
// ordered by descending cosine similarity. Ties keep the original row order.
// Returns fewer than k results only when the matrix has fewer than k rows,
// and an empty slice for an empty matrix or non-positive k.
func TopK(vectors [][]float32, query []float32, k int) []Result {
	if k <= 0 || len(vectors) == 0 {
		return []Result{}
	}

	results := make([]Result, len(vectors))
	for i, vec := range vectors {
		results[i] = Result{Row: i, Score: CosineSimilarity(query, vec)}
	}

	// Stable sort keeps equal scores in row order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

// CosineSimilarity computes dot(a,b) / (‖a‖·‖b‖) in float64.
// A zero-norm vector on either side scores 0 rather than dividing by zero,
// as does a length mismatch.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
