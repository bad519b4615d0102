package vector

import (
	"fmt"
	"sort"
)

// Hit is a single nearest-neighbor result.
type Hit struct {
	ID    string
	Score float64
}

// Index is a flat inner-product index. Vectors are expected to be unit
// length, making the score a cosine similarity. The corpus is small (a
// report catalog), so exact brute-force search is cheaper than any
// external index. Immutable after startup.
type Index struct {
	dim     int
	ids     []string
	vectors [][]float32
}

func NewIndex(dim int) *Index {
	return &Index{dim: dim}
}

func (idx *Index) Add(id string, vec []float32) error {
	if len(vec) != idx.dim {
		return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(vec), idx.dim)
	}
	idx.ids = append(idx.ids, id)
	idx.vectors = append(idx.vectors, vec)
	return nil
}

func (idx *Index) Size() int {
	return len(idx.ids)
}

// Search returns up to k nearest neighbors ordered by descending score.
// Ties keep insertion order, so results are deterministic across runs.
func (idx *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("query dimension mismatch: got %d, want %d", len(query), idx.dim)
	}
	if k <= 0 || len(idx.ids) == 0 {
		return nil, nil
	}
	if k > len(idx.ids) {
		k = len(idx.ids)
	}

	hits := make([]Hit, len(idx.ids))
	for i, vec := range idx.vectors {
		hits[i] = Hit{ID: idx.ids[i], Score: dot(query, vec)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	return hits[:k], nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
