package embeddings

import "context"

// Embedder defines the interface for generating text embeddings.
// Vectors are returned in input order, one per text, all with Dimensions()
// entries. A batch either succeeds as a whole or fails as a whole; the
// index build decides how to degrade on failure.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
