package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
	"ragchat/internal/index"
)

func TestCosineIdenticalDirection(t *testing.T) {
	sim, err := Cosine(domain.Vector{1, 2, 3}, domain.Vector{2, 4, 6})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestCosineOrthogonal(t *testing.T) {
	sim, err := Cosine(domain.Vector{1, 0}, domain.Vector{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)
}

func TestCosineOpposite(t *testing.T) {
	sim, err := Cosine(domain.Vector{1, 0}, domain.Vector{-1, 0})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, sim, 1e-9)
}

func TestCosineZeroVectorOperand(t *testing.T) {
	sim, err := Cosine(domain.Vector{0, 0, 0}, domain.Vector{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine(domain.Vector{1, 2}, domain.Vector{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func buildIndex(entries map[string]domain.Vector, order []string) *index.Index {
	ix := index.New()
	for _, text := range order {
		ix.Add(text, entries[text])
	}
	return ix
}

func TestRankFiltersAndSorts(t *testing.T) {
	// Query along x axis; similarities are the cosines of the angles.
	ix := buildIndex(map[string]domain.Vector{
		"گربه روی حصار است.": {0.9, 0.4359},  // ~0.9
		"سگ در باغ است.":     {0.2, 0.9798},  // ~0.2
		"high.":              {0.99, 0.1411}, // ~0.99
	}, []string{"گربه روی حصار است.", "سگ در باغ است.", "high."})

	results, err := Rank(domain.Vector{1, 0}, ix, 5, 0.7)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "high.", results[0].Text)
	assert.Equal(t, "گربه روی حصار است.", results[1].Text)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Similarity, 0.7)
	}
}

func TestRankTopKBound(t *testing.T) {
	ix := index.New()
	for i := 0; i < 10; i++ {
		ix.Add(string(rune('a'+i))+".", domain.Vector{1, 0})
	}
	results, err := Rank(domain.Vector{1, 0}, ix, 3, 0.0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRankTiesKeepInsertionOrder(t *testing.T) {
	ix := buildIndex(map[string]domain.Vector{
		"first.":  {2, 0},
		"second.": {5, 0},
		"third.":  {1, 0},
	}, []string{"first.", "second.", "third."})

	results, err := Rank(domain.Vector{1, 0}, ix, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first.", results[0].Text)
	assert.Equal(t, "second.", results[1].Text)
	assert.Equal(t, "third.", results[2].Text)
}

func TestRankZeroVectorEntriesNeverRankHigh(t *testing.T) {
	ix := buildIndex(map[string]domain.Vector{
		"failed chunk.": {0, 0},
		"real chunk.":   {1, 0},
	}, []string{"failed chunk.", "real chunk."})

	results, err := Rank(domain.Vector{1, 0}, ix, 5, 0.7)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "real chunk.", results[0].Text)
}

func TestRankDimensionMismatchIsHardError(t *testing.T) {
	ix := buildIndex(map[string]domain.Vector{"short.": {1, 0, 0}}, []string{"short."})
	_, err := Rank(domain.Vector{1, 0}, ix, 5, 0.0)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestRankEmptyIndex(t *testing.T) {
	results, err := Rank(domain.Vector{1, 0}, index.New(), 5, 0.7)
	require.NoError(t, err)
	assert.Empty(t, results)
}
