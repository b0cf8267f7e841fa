// Package vectorindex answers nearest-neighbor queries over chunk
// embeddings by cosine similarity. Two backends share one contract: the
// chromem-go database and a brute-force scan. The backend is selected once
// at startup; results are identical either way (modulo floating-point tie
// order), so the brute-force path is a correctness guarantee, not an
// optimization detail.
package vectorindex

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/trotybot/wikirag/internal/config"
)

// Hit pairs a chunk position with its cosine similarity to the query,
// in [-1, 1].
type Hit struct {
	Position int
	Score    float32
}

// Index searches stored chunk embeddings. Implementations are immutable
// after construction and safe for concurrent reads.
type Index interface {
	// Search returns up to k hits ordered by descending similarity.
	// Requests for more hits than stored vectors are clamped.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Backend names the active implementation.
	Backend() config.VectorBackend
}

// New builds an index over the given embedding matrix using the requested
// backend. A chromem backend that cannot be constructed degrades to the
// brute-force scan; the fallback is logged rather than returned, since the
// result is usable either way. An error means no index was built.
func New(backend config.VectorBackend, vectors [][]float32) (Index, error) {
	switch backend {
	case config.BackendFlat:
		return NewFlat(vectors), nil
	case config.BackendChromem, "":
		idx, err := NewChromem(vectors)
		if err != nil {
			log.Printf("warning: chromem backend unavailable, using brute-force scan: %v", err)
			return NewFlat(vectors), nil
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", backend)
	}
}

// Normalize returns a unit-L2-norm copy of vec. Zero vectors are returned
// as zero-filled copies so degraded (zero-filled) chunk embeddings score
// zero against everything instead of producing NaNs.
func Normalize(vec []float32) []float32 {
	out := make([]float32, len(vec))
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
