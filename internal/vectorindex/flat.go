package vectorindex

import (
	"context"
	"sort"

	"github.com/trotybot/wikirag/internal/config"
)

// Flat is a brute-force index: a dot-product scan over row-normalized
// vectors. It has no external dependencies and serves as the reference
// behavior for any accelerated backend.
type Flat struct {
	vectors [][]float32
}

// NewFlat stores unit-normalized copies of the given vectors.
func NewFlat(vectors [][]float32) *Flat {
	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		normalized[i] = Normalize(v)
	}
	return &Flat{vectors: normalized}
}

func (f *Flat) Len() int { return len(f.vectors) }

func (f *Flat) Backend() config.VectorBackend { return config.BackendFlat }

func (f *Flat) Search(_ context.Context, query []float32, k int) ([]Hit, error) {
	if k <= 0 || len(f.vectors) == 0 {
		return nil, nil
	}
	if k > len(f.vectors) {
		k = len(f.vectors)
	}

	q := Normalize(query)
	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{Position: i, Score: dot(v, q)}
	}

	// Stable sort keeps position order on score ties.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	return hits[:k], nil
}
