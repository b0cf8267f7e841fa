package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.ChunkSize != 1200 {
		t.Errorf("expected default chunk_size 1200, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 200 {
		t.Errorf("expected default chunk_overlap 200, got %d", cfg.ChunkOverlap)
	}
	if cfg.TopK != 3 {
		t.Errorf("expected default top_k 3, got %d", cfg.TopK)
	}
	if cfg.CacheCapacity != 200 {
		t.Errorf("expected default cache_capacity 200, got %d", cfg.CacheCapacity)
	}
	if cfg.VectorBackend != BackendChromem {
		t.Errorf("expected default vector_backend %q, got %q", BackendChromem, cfg.VectorBackend)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wikirag.yml")

	original := DefaultConfig()
	original.Provider = ProviderOllama
	original.Model = "gemma3"
	original.EmbeddingProvider = ProviderOllama
	original.EmbeddingModel = "nomic-embed-text"
	original.EmbeddingDimensions = 768
	original.CorpusFile = ""
	original.CorpusDir = "wiki"
	original.Include = []string{"**/*.md"}
	original.TopK = 5

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.EmbeddingDimensions != original.EmbeddingDimensions {
		t.Errorf("embedding_dimensions: got %d, want %d", loaded.EmbeddingDimensions, original.EmbeddingDimensions)
	}
	if loaded.CorpusDir != original.CorpusDir {
		t.Errorf("corpus_dir: got %q, want %q", loaded.CorpusDir, original.CorpusDir)
	}
	if loaded.TopK != original.TopK {
		t.Errorf("top_k: got %d, want %d", loaded.TopK, original.TopK)
	}
	if len(loaded.Include) != len(original.Include) {
		t.Errorf("include length: got %d, want %d", len(loaded.Include), len(original.Include))
	}
	for i, v := range loaded.Include {
		if v != original.Include[i] {
			t.Errorf("include[%d]: got %q, want %q", i, v, original.Include[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("WIKIRAG_TOP_K", "7")
	defer os.Unsetenv("WIKIRAG_TOP_K")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.TopK != 7 {
		t.Errorf("env override failed: got %d, want 7", loaded.TopK)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "groq"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}
}

func TestValidateEmptyModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty model")
	}
}

func TestValidateCorpusSources(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CorpusFile = ""
	cfg.CorpusDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error when no corpus source is set")
	}

	cfg = DefaultConfig()
	cfg.CorpusDir = "wiki"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error when both corpus sources are set")
	}
}

func TestValidateChunkOverlap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkOverlap = cfg.ChunkSize
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for overlap >= chunk_size")
	}

	cfg = DefaultConfig()
	cfg.ChunkOverlap = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative overlap")
	}
}

func TestValidateInvalidBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VectorBackend = "faiss"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown vector backend")
	}
}

func TestValidateCacheCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheCapacity = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero cache_capacity")
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}
