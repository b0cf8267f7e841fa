package index

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/trotybot/wikirag/internal/cache"
	"github.com/trotybot/wikirag/internal/config"
	"github.com/trotybot/wikirag/internal/corpus"
	"github.com/trotybot/wikirag/internal/db"
	"github.com/trotybot/wikirag/internal/progress"
)

type memProvider struct {
	docs []corpus.Document
}

func (p *memProvider) Load(_ context.Context) ([]corpus.Document, error) {
	return p.docs, nil
}

// stubEmbedder produces deterministic vectors from text bytes and counts
// calls so tests can tell a rebuild from an artifact load.
type stubEmbedder struct {
	dims  int
	calls int
	fail  bool
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.fail {
		return nil, errors.New("embedding backend down")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, e.dims)
		for j := 0; j < len(text); j++ {
			v[j%e.dims] += float32(text[j] % 13)
		}
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int { return e.dims }
func (e *stubEmbedder) Name() string    { return "stub" }

// stampedProvider adds a metadata change stamp to memProvider, standing in
// for the file-backed providers on the query path.
type stampedProvider struct {
	memProvider
	stamp    string
	stampErr error
	loads    int
}

func (p *stampedProvider) Load(ctx context.Context) ([]corpus.Document, error) {
	p.loads++
	return p.memProvider.Load(ctx)
}

func (p *stampedProvider) Stamp() (string, error) {
	return p.stamp, p.stampErr
}

// flakyProvider fails loads on demand, standing in for a corpus file that
// is temporarily unreadable.
type flakyProvider struct {
	docs []corpus.Document
	fail bool
}

func (p *flakyProvider) Load(_ context.Context) ([]corpus.Document, error) {
	if p.fail {
		return nil, errors.New("corpus file locked")
	}
	return p.docs, nil
}

func testDocs() []corpus.Document {
	return []corpus.Document{
		{ID: "arc", Title: "Arc Furnace", URL: "wiki/arc", Content: "The Arc Furnace produces 500 power from scrap."},
		{ID: "turbine", Title: "Turbine", URL: "wiki/turbine", Content: "The Turbine converts steam into rotational energy."},
	}
}

type fixture struct {
	idx      *Index
	embedder *stubEmbedder
	provider *memProvider
	cache    *cache.AnswerCache
	database *db.DB
	cfg      *config.Config
}

func newFixture(t *testing.T, docs []corpus.Document) *fixture {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.ChunkSize = 200
	cfg.ChunkOverlap = 20
	cfg.VectorBackend = config.BackendFlat

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	answerCache, err := cache.Open(database, cfg.CacheCapacity)
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}

	f := &fixture{
		embedder: &stubEmbedder{dims: 4},
		provider: &memProvider{docs: docs},
		cache:    answerCache,
		database: database,
		cfg:      cfg,
	}
	f.idx = New(cfg, f.provider, f.embedder, database, answerCache, progress.NopReporter{})
	return f
}

func TestLifecycleUnbuiltToReady(t *testing.T) {
	f := newFixture(t, testDocs())

	if got := f.idx.State(); got != StateUnbuilt {
		t.Fatalf("initial state = %s, want unbuilt", got)
	}
	if _, err := f.idx.Retrieve(context.Background(), "arc furnace", 3); err == nil {
		t.Error("Retrieve before Ensure succeeded, want error")
	}

	if err := f.idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got := f.idx.State(); got != StateReady {
		t.Fatalf("state after ensure = %s, want ready", got)
	}
	if f.idx.ChunkCount() == 0 {
		t.Error("no chunks indexed")
	}
	if f.idx.Fingerprint() == "" {
		t.Error("no fingerprint recorded")
	}

	results, err := f.idx.Retrieve(context.Background(), "arc furnace", 3)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(results) == 0 || results[0].Title != "Arc Furnace" {
		t.Errorf("retrieve results = %+v, want Arc Furnace first", results)
	}
}

func TestEnsureEmptyCorpus(t *testing.T) {
	f := newFixture(t, nil)

	err := f.idx.Ensure(context.Background())
	if !errors.Is(err, ErrCorpusUnavailable) {
		t.Fatalf("ensure on empty corpus: %v, want ErrCorpusUnavailable", err)
	}
	if got := f.idx.State(); got != StateUnbuilt {
		t.Errorf("state = %s, want unbuilt", got)
	}
}

func TestEnsureIsIdempotentWhenCurrent(t *testing.T) {
	f := newFixture(t, testDocs())

	if err := f.idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	callsAfterBuild := f.embedder.calls

	if err := f.idx.Ensure(context.Background()); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if f.embedder.calls != callsAfterBuild {
		t.Errorf("second ensure re-embedded (%d calls, was %d)", f.embedder.calls, callsAfterBuild)
	}
}

func TestEnsureFastPathSkipsCorpusReload(t *testing.T) {
	f := newFixture(t, nil)
	provider := &stampedProvider{memProvider: memProvider{docs: testDocs()}, stamp: "v1"}
	idx := New(f.cfg, provider, f.embedder, f.database, f.cache, progress.NopReporter{})

	if err := idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	loadsAfterBuild := provider.loads

	for n := 0; n < 3; n++ {
		if err := idx.Ensure(context.Background()); err != nil {
			t.Fatalf("ensure %d: %v", n, err)
		}
	}
	if provider.loads != loadsAfterBuild {
		t.Errorf("ready index reloaded the corpus (%d loads, was %d)", provider.loads, loadsAfterBuild)
	}

	// A stamp read error keeps the fast path; a stat failure on the query
	// path must not reach the corpus either.
	provider.stampErr = errors.New("stat failed")
	if err := idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure with failing stamp: %v", err)
	}
	if provider.loads != loadsAfterBuild {
		t.Error("stamp error forced a corpus reload")
	}
}

func TestEnsureStampChangeRebuildsAndInvalidates(t *testing.T) {
	f := newFixture(t, nil)
	provider := &stampedProvider{memProvider: memProvider{docs: testDocs()}, stamp: "v1"}
	idx := New(f.cfg, provider, f.embedder, f.database, f.cache, progress.NopReporter{})

	if err := idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := f.cache.Put("what is the arc furnace?", "old answer", nil); err != nil {
		t.Fatalf("put: %v", err)
	}

	provider.docs[0].Content = "The Arc Furnace produces 750 power."
	provider.stamp = "v2"

	if err := idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure after source change: %v", err)
	}
	if f.cache.Len() != 0 {
		t.Errorf("cache has %d entries after source change, want 0", f.cache.Len())
	}
	if got := idx.State(); got != StateReady {
		t.Errorf("state = %s, want ready", got)
	}
}

func TestEnsureCorpusErrorAfterReadyKeepsServing(t *testing.T) {
	f := newFixture(t, nil)
	provider := &flakyProvider{docs: testDocs()}
	idx := New(f.cfg, provider, f.embedder, f.database, f.cache, progress.NopReporter{})

	if err := idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	provider.fail = true
	if err := idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure with unreadable corpus: %v", err)
	}
	if got := idx.State(); got != StateReady {
		t.Errorf("state = %s, want ready", got)
	}
	results, err := idx.Retrieve(context.Background(), "turbine", 3)
	if err != nil || len(results) == 0 {
		t.Errorf("retrieval degraded after transient corpus error: %v, %d results", err, len(results))
	}

	// First boot is different: an unreadable corpus is fatal there.
	idx2 := New(f.cfg, provider, &stubEmbedder{dims: 4}, f.database, f.cache, progress.NopReporter{})
	if err := idx2.Ensure(context.Background()); err == nil {
		t.Error("fresh index with unreadable corpus reported ready")
	}
}

func TestArtifactsSurviveRestart(t *testing.T) {
	f := newFixture(t, testDocs())
	if err := f.idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	// A fresh Index over the same data directory and database stands in for
	// a process restart.
	emb2 := &stubEmbedder{dims: 4}
	idx2 := New(f.cfg, f.provider, emb2, f.database, f.cache, progress.NopReporter{})
	if err := idx2.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure after restart: %v", err)
	}
	if emb2.calls != 0 {
		t.Errorf("restart re-embedded the corpus (%d calls), want artifact load", emb2.calls)
	}
	if idx2.ChunkCount() != f.idx.ChunkCount() {
		t.Errorf("chunk count %d after restart, want %d", idx2.ChunkCount(), f.idx.ChunkCount())
	}
	if idx2.Fingerprint() != f.idx.Fingerprint() {
		t.Error("fingerprint changed across restart")
	}
}

func TestEmbedderChangeForcesRebuild(t *testing.T) {
	f := newFixture(t, testDocs())
	if err := f.idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	// Same corpus, different embedding dimension: the artifact no longer
	// matches and must be rebuilt.
	emb2 := &stubEmbedder{dims: 8}
	idx2 := New(f.cfg, f.provider, emb2, f.database, f.cache, progress.NopReporter{})
	if err := idx2.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure with new embedder: %v", err)
	}
	if emb2.calls == 0 {
		t.Error("dimension change did not trigger a rebuild")
	}
}

func TestFingerprintChangeInvalidatesCache(t *testing.T) {
	f := newFixture(t, testDocs())
	if err := f.idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := f.cache.Put("what is the arc furnace?", "old answer", nil); err != nil {
		t.Fatalf("put: %v", err)
	}

	f.provider.docs = append(testDocs(), corpus.Document{
		ID: "smelter", Title: "Smelter", URL: "wiki/smelter", Content: "The Smelter refines ore.",
	})
	if err := f.idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure after corpus change: %v", err)
	}

	if f.cache.Len() != 0 {
		t.Errorf("cache has %d entries after fingerprint change, want 0", f.cache.Len())
	}
	if got := f.idx.State(); got != StateReady {
		t.Errorf("state = %s after rebuild, want ready", got)
	}
	if f.idx.ChunkCount() < 3 {
		t.Errorf("chunk count %d after adding a document, want at least 3", f.idx.ChunkCount())
	}
}

func TestRebuildForcesReembedding(t *testing.T) {
	f := newFixture(t, testDocs())
	if err := f.idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	f.cache.Put("q", "a", nil)
	callsAfterBuild := f.embedder.calls

	if err := f.idx.Rebuild(context.Background()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if f.embedder.calls == callsAfterBuild {
		t.Error("rebuild did not re-embed")
	}
	if f.cache.Len() != 0 {
		t.Errorf("cache has %d entries after rebuild, want 0", f.cache.Len())
	}
}

func TestEmbedFailureZeroFills(t *testing.T) {
	f := newFixture(t, testDocs())
	f.embedder.fail = true

	if err := f.idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure with failing embedder: %v", err)
	}
	if got := f.idx.State(); got != StateReady {
		t.Fatalf("state = %s, want ready (degraded, not failed)", got)
	}

	// Title lookup still works; vector search scores zero everywhere.
	results, err := f.idx.Retrieve(context.Background(), "turbine", 3)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(results) == 0 || results[0].Title != "Turbine" {
		t.Errorf("results = %+v, want lexical Turbine hit", results)
	}
}

func TestCorruptChunksArtifactRebuilds(t *testing.T) {
	f := newFixture(t, testDocs())
	if err := f.idx.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if err := os.WriteFile(f.idx.chunksPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupting artifact: %v", err)
	}

	emb2 := &stubEmbedder{dims: 4}
	idx2 := New(f.cfg, f.provider, emb2, f.database, f.cache, progress.NopReporter{})
	if err := idx2.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure over corrupt artifact: %v", err)
	}
	if emb2.calls == 0 {
		t.Error("corrupt artifact did not trigger a rebuild")
	}
	if got := idx2.State(); got != StateReady {
		t.Errorf("state = %s, want ready", got)
	}
}
