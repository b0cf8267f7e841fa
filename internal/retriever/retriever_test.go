package retriever

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/trotybot/wikirag/internal/chunker"
	"github.com/trotybot/wikirag/internal/titleindex"
	"github.com/trotybot/wikirag/internal/vectorindex"
)

// mapEmbedder returns a fixed vector per known text and a neutral vector
// otherwise, so tests control similarity exactly.
type mapEmbedder struct {
	dims    int
	vectors map[string][]float32
	fail    bool
	calls   int
}

func (m *mapEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.fail {
		return nil, errors.New("embedding backend down")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := m.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = make([]float32, m.dims)
		}
	}
	return out, nil
}

func (m *mapEmbedder) Dimensions() int { return m.dims }
func (m *mapEmbedder) Name() string    { return "map" }

func buildRetriever(t *testing.T, chunks []chunker.Chunk, chunkVecs [][]float32, emb *mapEmbedder) *Retriever {
	t.Helper()
	titles := titleindex.Build(chunks)
	vectors := vectorindex.NewFlat(chunkVecs)
	return New(chunks, titles, vectors, emb)
}

func wikiChunks() []chunker.Chunk {
	return []chunker.Chunk{
		{Title: "S.T.F.R.", Content: "The S.T.F.R. is a fusion reactor.", URL: "u0", DocID: "stfr", Index: 0},
		{Title: "S.T.F.R.", Content: "Startup requires coolant.", URL: "u0", DocID: "stfr", Index: 1},
		{Title: "Arc Furnace", Content: "The Arc Furnace produces 500 power.", URL: "u1", DocID: "arc", Index: 0},
		{Title: "Turbine", Content: "The Turbine converts steam.", URL: "u2", DocID: "turbine", Index: 0},
	}
}

func wikiVectors() [][]float32 {
	return [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

func TestRetrieve_ExactTitleAndSiblings(t *testing.T) {
	emb := &mapEmbedder{dims: 3}
	r := buildRetriever(t, wikiChunks(), wikiVectors(), emb)

	results := r.Retrieve(context.Background(), "stfr", 4)
	if len(results) < 2 {
		t.Fatalf("got %d results, want at least 2", len(results))
	}

	if results[0].Content != "The S.T.F.R. is a fusion reactor." || results[0].Score != 2.0 {
		t.Errorf("first result: got %q score %v, want primary chunk at 2.0", results[0].Title, results[0].Score)
	}
	if results[1].Content != "Startup requires coolant." || results[1].Score != 1.8 {
		t.Errorf("second result: got %q score %v, want sibling chunk at 1.8", results[1].Content, results[1].Score)
	}
	// Siblings come before anything vector search contributed.
	for _, res := range results[2:] {
		if res.Score > 1.8 {
			t.Errorf("non-sibling result outranked siblings: %+v", res)
		}
	}
}

func TestRetrieve_TitleInsideQuestion(t *testing.T) {
	emb := &mapEmbedder{dims: 3}
	r := buildRetriever(t, wikiChunks(), wikiVectors(), emb)

	results := r.Retrieve(context.Background(), "What is the Arc Furnace?", 3)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Title != "Arc Furnace" || results[0].Score != 2.0 {
		t.Errorf("got %q score %v, want Arc Furnace at 2.0", results[0].Title, results[0].Score)
	}
}

func TestRetrieve_WordMatch(t *testing.T) {
	emb := &mapEmbedder{dims: 3}
	r := buildRetriever(t, wikiChunks(), wikiVectors(), emb)

	results := r.Retrieve(context.Background(), "how fast does the turbine spin compared to others", 2)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Title != "Turbine" || results[0].Score != 1.5 {
		t.Errorf("got %q score %v, want Turbine at 1.5", results[0].Title, results[0].Score)
	}
}

func TestRetrieve_VectorFillWithTitleBoost(t *testing.T) {
	question := "tell me about power production"
	emb := &mapEmbedder{
		dims: 3,
		vectors: map[string][]float32{
			question: {0, 1, 0}, // aligned with Arc Furnace's chunk vector
		},
	}
	r := buildRetriever(t, wikiChunks(), wikiVectors(), emb)

	results := r.Retrieve(context.Background(), question, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Title != "Arc Furnace" {
		t.Errorf("best vector result: got %q, want Arc Furnace", results[0].Title)
	}
	// Cosine 1.0, no title overlap with the question: boost 0.
	if math.Abs(results[0].Score-1.0) > 1e-5 {
		t.Errorf("score: got %v, want ~1.0", results[0].Score)
	}
}

func TestRetrieve_NoDuplicatePositions(t *testing.T) {
	question := "stfr"
	emb := &mapEmbedder{
		dims: 3,
		vectors: map[string][]float32{
			// Points straight at the S.T.F.R. chunks already emitted lexically.
			question: {1, 0, 0},
		},
	}
	r := buildRetriever(t, wikiChunks(), wikiVectors(), emb)

	results := r.Retrieve(context.Background(), question, 4)
	seen := make(map[string]int)
	for _, res := range results {
		seen[res.Title+"\x00"+res.Content]++
	}
	for key, n := range seen {
		if n > 1 {
			t.Errorf("duplicate result emitted %d times: %q", n, key)
		}
	}
}

func TestRetrieve_EmbedderFailureDegrades(t *testing.T) {
	emb := &mapEmbedder{dims: 3, fail: true}
	r := buildRetriever(t, wikiChunks(), wikiVectors(), emb)

	// Lexical hit survives the embedding failure.
	results := r.Retrieve(context.Background(), "turbine", 3)
	if len(results) != 1 || results[0].Title != "Turbine" {
		t.Fatalf("got %+v, want only the lexical Turbine result", results)
	}

	// Pure semantic question yields nothing rather than an error.
	if results := r.Retrieve(context.Background(), "melting point of steel", 3); len(results) != 0 {
		t.Errorf("got %d results with a dead embedder, want 0", len(results))
	}
}

func TestRetrieve_TruncatesToK(t *testing.T) {
	question := "power machines overview"
	emb := &mapEmbedder{
		dims: 3,
		vectors: map[string][]float32{
			question: {0.5, 0.5, 0.5},
		},
	}
	r := buildRetriever(t, wikiChunks(), wikiVectors(), emb)

	results := r.Retrieve(context.Background(), question, 1)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}

func TestRetrieve_SkipsEmbeddingWhenLexicallySatisfied(t *testing.T) {
	emb := &mapEmbedder{dims: 3}
	r := buildRetriever(t, wikiChunks(), wikiVectors(), emb)

	// k=2 is fully covered by the exact match plus sibling.
	_ = r.Retrieve(context.Background(), "stfr", 2)
	if emb.calls != 0 {
		t.Errorf("embedder called %d times for a lexically satisfied query, want 0", emb.calls)
	}
}
