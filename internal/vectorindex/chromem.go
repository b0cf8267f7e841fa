package vectorindex

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/trotybot/wikirag/internal/config"
)

const collectionName = "chunks"

// Chromem is the accelerated backend built on the chromem-go in-process
// vector database. Embeddings are precomputed by the index build, so the
// collection never calls out to an embedding API.
type Chromem struct {
	collection *chromem.Collection
	size       int
}

// NewChromem builds a chromem collection holding one document per chunk
// position, with the normalized embedding attached directly.
func NewChromem(vectors [][]float32) (*Chromem, error) {
	db := chromem.NewDB()

	// Queries always arrive as embeddings; a text query reaching this
	// function is a programming error.
	noEmbed := func(_ context.Context, _ string) ([]float32, error) {
		return nil, fmt.Errorf("collection holds precomputed embeddings only")
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	docs := make([]chromem.Document, len(vectors))
	for i, v := range vectors {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(i),
			Content:   "chunk " + strconv.Itoa(i),
			Embedding: Normalize(v),
		}
	}
	if len(docs) > 0 {
		if err := col.AddDocuments(context.Background(), docs, 1); err != nil {
			return nil, fmt.Errorf("add documents: %w", err)
		}
	}

	return &Chromem{collection: col, size: len(vectors)}, nil
}

func (c *Chromem) Len() int { return c.size }

func (c *Chromem) Backend() config.VectorBackend { return config.BackendChromem }

func (c *Chromem) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if k <= 0 || c.size == 0 {
		return nil, nil
	}
	if k > c.size {
		k = c.size
	}

	results, err := c.collection.QueryEmbedding(ctx, Normalize(query), k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		pos, err := strconv.Atoi(r.ID)
		if err != nil {
			return nil, fmt.Errorf("chromem returned non-positional id %q", r.ID)
		}
		hits = append(hits, Hit{Position: pos, Score: r.Similarity})
	}
	return hits, nil
}
