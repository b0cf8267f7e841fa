package config

// DefaultInclude are glob patterns for corpus_dir loading.
var DefaultInclude = []string{"**/*.md", "**/*.txt"}

// DefaultExclude are glob patterns excluded from corpus_dir loading.
var DefaultExclude = []string{
	"**/.*",
	"**/node_modules/**",
	"**/README.md",
}

// DefaultConfig returns a Config with sensible defaults.
//
// Chunk size bounds how much of one page lands in a single prompt context
// block; the overlap keeps neighbouring chunks sharing enough text that a
// cut never strands a sentence.
func DefaultConfig() *Config {
	return &Config{
		Provider:            ProviderOpenAI,
		Model:               "gpt-4o-mini",
		EmbeddingProvider:   ProviderOpenAI,
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: 0,
		DataDir:             ".wikirag",
		CorpusFile:          "data/wiki_pages.json",
		Include:             DefaultInclude,
		Exclude:             DefaultExclude,
		ChunkSize:           1200,
		ChunkOverlap:        200,
		TopK:                3,
		CacheCapacity:       200,
		VectorBackend:       BackendChromem,
		RequestTimeoutSecs:  30,
		Server: ServerConfig{
			Port: 8791,
		},
	}
}
