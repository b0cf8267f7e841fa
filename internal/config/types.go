package config

// ProviderType identifies an embedding or LLM provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// VectorBackend selects the vector search implementation.
type VectorBackend string

const (
	// BackendChromem uses the chromem-go in-process vector database.
	BackendChromem VectorBackend = "chromem"
	// BackendFlat uses the brute-force scan over stored vectors.
	BackendFlat VectorBackend = "flat"
)

// Config is the top-level wikirag configuration, corresponding to .wikirag.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	// EmbeddingDimensions is required for providers whose models do not have
	// a known fixed dimension (e.g. ollama).
	EmbeddingDimensions int `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`

	// DataDir holds the index artifacts and the answer cache database.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	// CorpusFile is a JSON array of wiki pages. If CorpusDir is set instead,
	// the corpus is read from markdown/text files under that directory.
	CorpusFile string   `yaml:"corpus_file" koanf:"corpus_file"`
	CorpusDir  string   `yaml:"corpus_dir" koanf:"corpus_dir"`
	Include    []string `yaml:"include" koanf:"include"`
	Exclude    []string `yaml:"exclude" koanf:"exclude"`
	BaseURL    string   `yaml:"base_url" koanf:"base_url"`

	ChunkSize     int           `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap  int           `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK          int           `yaml:"top_k" koanf:"top_k"`
	CacheCapacity int           `yaml:"cache_capacity" koanf:"cache_capacity"`
	VectorBackend VectorBackend `yaml:"vector_backend" koanf:"vector_backend"`

	// RequestTimeoutSecs bounds each embedding or generation API call.
	RequestTimeoutSecs int `yaml:"request_timeout_secs" koanf:"request_timeout_secs"`

	Server ServerConfig `yaml:"server" koanf:"server"`
}

// ServerConfig holds HTTP server settings for `wikirag serve`.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
