// Package retriever merges lexical title matches with vector search into a
// bounded, score-ranked result list.
package retriever

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/trotybot/wikirag/internal/chunker"
	"github.com/trotybot/wikirag/internal/embeddings"
	"github.com/trotybot/wikirag/internal/titleindex"
	"github.com/trotybot/wikirag/internal/vectorindex"
)

// Result is one retrieved chunk with its fused relevance score.
type Result struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
}

// Fixed scores for the lexical tiers. An exact title match always outranks
// everything vector search can produce (cosine + boost tops out at 1.5).
const (
	scoreExactTitle   = 2.0
	scoreSiblingChunk = 1.8
	scoreWordMatch    = 1.5
	titleBoostWeight  = 0.5
)

// candidateMultiplier controls how many vector candidates are fetched per
// requested result, leaving room for duplicates already emitted lexically.
const candidateMultiplier = 3

// Retriever runs hybrid retrieval over an immutable chunk set. Safe for
// concurrent use once constructed.
type Retriever struct {
	chunks   []chunker.Chunk
	titles   *titleindex.Index
	vectors  vectorindex.Index
	embedder embeddings.Embedder
}

// New creates a Retriever over the given built indexes.
func New(chunks []chunker.Chunk, titles *titleindex.Index, vectors vectorindex.Index, embedder embeddings.Embedder) *Retriever {
	return &Retriever{
		chunks:   chunks,
		titles:   titles,
		vectors:  vectors,
		embedder: embedder,
	}
}

// Retrieve returns up to k results for the question, highest score first.
// Lexical title matches take strict priority; remaining slots are filled by
// vector search with a title boost. Embedding failure degrades to whatever
// the lexical steps collected; it never aborts retrieval.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) []Result {
	if k <= 0 || len(r.chunks) == 0 {
		return nil
	}

	var (
		results []Result
		emitted = make(map[int]bool)
	)
	emit := func(pos int, score float64) {
		if emitted[pos] {
			return
		}
		emitted[pos] = true
		c := r.chunks[pos]
		results = append(results, Result{
			Title:   c.Title,
			Content: c.Content,
			URL:     c.URL,
			Score:   score,
		})
	}

	// Step 1: exact title match, then the document's sibling chunks. A
	// question that merely contains a full title ("what is the arc
	// furnace") counts as exact once normalized.
	questionKey := titleindex.NormalizeKey(question)
	pos, ok := r.titles.LookupExact(questionKey)
	if !ok {
		pos, ok = r.titles.LookupSubstring(questionKey)
	}
	if ok {
		emit(pos, scoreExactTitle)
		for _, sib := range r.titles.Positions(r.chunks[pos].Title) {
			emit(sib, scoreSiblingChunk)
		}
	}

	// Step 2: every query word that is itself an indexed title.
	for _, word := range strings.Fields(question) {
		if pos, ok := r.titles.LookupWord(word); ok {
			emit(pos, scoreWordMatch)
		}
	}

	// Step 3: vector search fills the remaining slots.
	if len(results) < k {
		r.vectorFill(ctx, question, k, emit, func() int { return len(results) })
	}

	// Stable sort: emission order breaks score ties.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func (r *Retriever) vectorFill(ctx context.Context, question string, k int, emit func(int, float64), count func() int) {
	vecs, err := r.embedder.Embed(ctx, []string{question})
	if err != nil || len(vecs) == 0 {
		log.Printf("warning: embedding query failed, lexical results only: %v", err)
		return
	}

	hits, err := r.vectors.Search(ctx, vecs[0], k*candidateMultiplier)
	if err != nil {
		log.Printf("warning: vector search failed, lexical results only: %v", err)
		return
	}

	for _, hit := range hits {
		if count() >= k {
			break
		}
		boost := TitleMatchScore(question, r.chunks[hit.Position].Title)
		emit(hit.Position, float64(hit.Score)+titleBoostWeight*boost)
	}
}
