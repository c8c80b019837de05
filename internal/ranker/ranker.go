// Package ranker scores index entries against a query embedding using
// cosine similarity and returns the top results above a threshold.
package ranker

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"ragchat/internal/domain"
	"ragchat/internal/index"
)

// ErrDimensionMismatch reports an attempt to compare vectors of
// different dimensionality. This is a hard error, never coerced.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Cosine returns the cosine similarity of a and b in [-1, 1]. A
// zero-norm operand (a failed-embedding placeholder) yields 0 rather
// than a division fault.
func Cosine(a, b domain.Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Rank scores every entry of idx against query and returns at most topK
// results with similarity >= threshold, ordered by descending
// similarity. Ties keep the index's insertion order (stable sort).
func Rank(query domain.Vector, idx *index.Index, topK int, threshold float64) ([]domain.RankedResult, error) {
	if topK <= 0 {
		topK = 5
	}
	var results []domain.RankedResult
	for _, e := range idx.Entries() {
		sim, err := Cosine(query, e.Vector)
		if err != nil {
			return nil, fmt.Errorf("ranking %q: %w", truncate(e.Text, 40), err)
		}
		if sim >= threshold {
			results = append(results, domain.RankedResult{Text: e.Text, Similarity: sim})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
