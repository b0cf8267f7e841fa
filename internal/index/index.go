// Package index owns the retrieval index lifecycle: building chunks and
// embeddings from the corpus, persisting them, detecting corpus changes via
// the fingerprint, and serving retrieval once ready.
package index

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/trotybot/wikirag/internal/cache"
	"github.com/trotybot/wikirag/internal/chunker"
	"github.com/trotybot/wikirag/internal/config"
	"github.com/trotybot/wikirag/internal/corpus"
	"github.com/trotybot/wikirag/internal/db"
	"github.com/trotybot/wikirag/internal/embeddings"
	"github.com/trotybot/wikirag/internal/progress"
	"github.com/trotybot/wikirag/internal/retriever"
	"github.com/trotybot/wikirag/internal/titleindex"
	"github.com/trotybot/wikirag/internal/vectorindex"
)

// ErrCorpusUnavailable is returned when the corpus loads empty; the index
// stays unbuilt rather than recording a fingerprint over nothing.
var ErrCorpusUnavailable = errors.New("corpus is empty or unavailable")

// metaFingerprint is the index_meta key recording the fingerprint of the
// corpus the persisted artifacts were built from.
const metaFingerprint = "corpus_fingerprint"

// embedBatchSize is the number of chunk texts sent per embedding call. A
// failed call zero-fills exactly this many vectors.
const embedBatchSize = 64

// Index builds and serves the retrieval indexes. A single RWMutex guards
// the whole structure: rebuilds hold the write lock and never expose a
// half-switched index, queries hold the read lock. The provider's change
// stamp keeps the per-query staleness check off the write lock while the
// source is unchanged.
type Index struct {
	cfg      *config.Config
	provider corpus.Provider
	embedder embeddings.Embedder
	database *db.DB
	cache    *cache.AnswerCache
	reporter progress.Reporter

	mu          sync.RWMutex
	state       State
	fingerprint string
	stamp       string
	chunks      []chunker.Chunk
	retriever   *retriever.Retriever
}

// New creates an unbuilt Index. Call Ensure before Retrieve.
func New(cfg *config.Config, provider corpus.Provider, embedder embeddings.Embedder, database *db.DB, answerCache *cache.AnswerCache, reporter progress.Reporter) *Index {
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	return &Index{
		cfg:      cfg,
		provider: provider,
		embedder: embedder,
		database: database,
		cache:    answerCache,
		reporter: reporter,
	}
}

// State returns the current lifecycle state.
func (i *Index) State() State {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state
}

// Fingerprint returns the corpus fingerprint of the current build, or ""
// before the first successful build.
func (i *Index) Fingerprint() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.fingerprint
}

// ChunkCount returns the number of indexed chunks.
func (i *Index) ChunkCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.chunks)
}

// Ensure makes the index ready: it loads persisted artifacts when the
// stored fingerprint matches the corpus, and rebuilds otherwise. A
// fingerprint change invalidates the answer cache before rebuilding.
// Called before every query; a ready index whose source stamp is unchanged
// returns under the read lock without touching the corpus.
func (i *Index) Ensure(ctx context.Context) error {
	i.mu.RLock()
	current := i.state == StateReady && i.sourceUnchanged()
	i.mu.RUnlock()
	if current {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ensureLocked(ctx, false)
}

// sourceUnchanged reports whether the provider's change stamp still matches
// the one captured at build time. Providers without stamps always take the
// full fingerprint check. A stamp read error counts as unchanged so a
// transiently unreadable source never takes down a ready index.
func (i *Index) sourceUnchanged() bool {
	s, ok := i.provider.(corpus.Stamper)
	if !ok {
		return false
	}
	stamp, err := s.Stamp()
	if err != nil {
		return true
	}
	return stamp == i.stamp
}

// captureStamp reads the provider stamp ahead of the corpus load, so a
// source edit racing the load triggers one more check instead of going
// unnoticed.
func (i *Index) captureStamp() string {
	if s, ok := i.provider.(corpus.Stamper); ok {
		if stamp, err := s.Stamp(); err == nil {
			return stamp
		}
	}
	return ""
}

// Rebuild discards any persisted artifacts and rebuilds from the corpus
// unconditionally. The answer cache is invalidated.
func (i *Index) Rebuild(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ensureLocked(ctx, true)
}

// Retrieve runs hybrid retrieval against the current build. The read lock
// means queries in flight complete against the index version they started
// on.
func (i *Index) Retrieve(ctx context.Context, question string, k int) ([]retriever.Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.state != StateReady {
		return nil, fmt.Errorf("index not ready (state %s)", i.state)
	}
	return i.retriever.Retrieve(ctx, question, k), nil
}

func (i *Index) ensureLocked(ctx context.Context, force bool) error {
	stamp := i.captureStamp()

	docs, err := i.provider.Load(ctx)
	if err != nil {
		if !force && i.state == StateReady {
			// A transiently unreadable corpus never takes down a ready
			// index; the current build keeps serving.
			log.Printf("warning: corpus unreadable, serving current index: %v", err)
			return nil
		}
		return fmt.Errorf("loading corpus: %w", err)
	}
	if len(docs) == 0 {
		i.state = StateUnbuilt
		return ErrCorpusUnavailable
	}

	fp := corpus.Fingerprint(docs)
	if !force && i.state == StateReady && fp == i.fingerprint {
		i.stamp = stamp
		return nil
	}

	stored, err := i.database.GetMeta(metaFingerprint)
	if err != nil {
		return fmt.Errorf("reading stored fingerprint: %w", err)
	}

	if !force && stored == fp {
		if err := i.loadArtifacts(fp); err == nil {
			i.stamp = stamp
			return nil
		} else {
			log.Printf("warning: persisted index unusable, rebuilding: %v", err)
		}
	}

	if stored != "" && stored != fp {
		// Corpus changed since the recorded build: every cached answer may
		// be grounded on stale content.
		i.state = StateStale
		if err := i.cache.InvalidateAll(); err != nil {
			return fmt.Errorf("invalidating answer cache: %w", err)
		}
	}
	if force {
		if err := i.cache.InvalidateAll(); err != nil {
			return fmt.Errorf("invalidating answer cache: %w", err)
		}
	}

	if err := i.buildLocked(ctx, docs, fp); err != nil {
		return err
	}
	i.stamp = stamp
	return nil
}

// buildLocked chunks the corpus, embeds every chunk, constructs the title
// and vector indexes, and persists the result.
func (i *Index) buildLocked(ctx context.Context, docs []corpus.Document, fp string) error {
	i.state = StateBuilding

	splitter := chunker.New(i.cfg.ChunkSize, i.cfg.ChunkOverlap)
	var chunks []chunker.Chunk
	for _, doc := range docs {
		chunks = append(chunks, splitter.Split(doc)...)
	}
	if len(chunks) == 0 {
		i.state = StateUnbuilt
		return ErrCorpusUnavailable
	}

	vectors, err := i.embedChunks(ctx, chunks)
	if err != nil {
		i.state = StateUnbuilt
		return err
	}

	vec, err := vectorindex.New(i.cfg.VectorBackend, vectors)
	if err != nil {
		i.state = StateUnbuilt
		return fmt.Errorf("building vector index: %w", err)
	}

	if err := i.saveArtifacts(chunks, vectors); err != nil {
		i.state = StateUnbuilt
		return fmt.Errorf("persisting index: %w", err)
	}
	if err := i.database.SetMeta(metaFingerprint, fp); err != nil {
		i.state = StateUnbuilt
		return fmt.Errorf("recording fingerprint: %w", err)
	}

	i.install(chunks, vec, fp)
	return nil
}

// embedChunks embeds all chunk contents in batches. A failed batch is
// zero-filled and reported on stderr; those chunks stay findable by title
// but score zero in vector search.
func (i *Index) embedChunks(ctx context.Context, chunks []chunker.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	dims := i.embedder.Dimensions()

	i.reporter.Start(len(chunks))
	defer i.reporter.Finish()

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		batch, err := i.embedder.Embed(ctx, texts)
		if err != nil || len(batch) != len(texts) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("warning: embedding batch %d-%d failed, zero-filling: %v", start, end-1, err)
			for j := start; j < end; j++ {
				vectors[j] = make([]float32, dims)
			}
		} else {
			copy(vectors[start:end], batch)
		}
		i.reporter.Update(end, fmt.Sprintf("Embedded %d/%d chunks", end, len(chunks)))
	}
	return vectors, nil
}

// install swaps in a new build. Caller holds the write lock.
func (i *Index) install(chunks []chunker.Chunk, vec vectorindex.Index, fp string) {
	titles := titleindex.Build(chunks)
	i.chunks = chunks
	i.retriever = retriever.New(chunks, titles, vec, i.embedder)
	i.fingerprint = fp
	i.state = StateReady
}
