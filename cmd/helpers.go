package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/trotybot/wikirag/internal/cache"
	"github.com/trotybot/wikirag/internal/config"
	"github.com/trotybot/wikirag/internal/corpus"
	"github.com/trotybot/wikirag/internal/db"
	"github.com/trotybot/wikirag/internal/embeddings"
	"github.com/trotybot/wikirag/internal/engine"
	"github.com/trotybot/wikirag/internal/index"
	"github.com/trotybot/wikirag/internal/llm"
	"github.com/trotybot/wikirag/internal/progress"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `wikirag init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	case config.ProviderOllama:
		dims := cfg.EmbeddingDimensions
		if dims == 0 {
			dims = 768
		}
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, dims, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", provider)
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// newCorpusProvider selects the corpus source from config.
func newCorpusProvider(cfg *config.Config) corpus.Provider {
	if cfg.CorpusDir != "" {
		return corpus.NewDirProvider(cfg.CorpusDir, cfg.Include, cfg.Exclude, cfg.BaseURL)
	}
	return corpus.NewFileProvider(cfg.CorpusFile)
}

// app bundles the wired components shared by the query-side commands.
type app struct {
	cfg      *config.Config
	database *db.DB
	cache    *cache.AnswerCache
	index    *index.Index
	engine   *engine.Engine
}

// newApp wires the database, cache, index, and engine from config. The
// caller owns the returned database handle.
func newApp(cfg *config.Config, reporter progress.Reporter) (*app, error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "wikirag.db"))
	if err != nil {
		return nil, err
	}
	answerCache, err := cache.Open(database, cfg.CacheCapacity)
	if err != nil {
		database.Close()
		return nil, err
	}

	idx := index.New(cfg, newCorpusProvider(cfg), embedder, database, answerCache, reporter)
	return &app{
		cfg:      cfg,
		database: database,
		cache:    answerCache,
		index:    idx,
		engine:   engine.New(cfg, idx, answerCache, provider),
	}, nil
}

func (a *app) Close() {
	a.database.Close()
}
