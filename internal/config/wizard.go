package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .wikirag.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to wikirag! Let's configure your wiki assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.EmbeddingProvider = cfg.Provider

	// 2. Models.
	defaultModel := "gpt-4o-mini"
	defaultEmbedding := "text-embedding-3-small"
	if cfg.Provider == ProviderOllama {
		defaultModel = "gemma3"
		defaultEmbedding = "nomic-embed-text"
	}
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: defaultModel,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	embeddingPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: defaultEmbedding,
	}
	if cfg.EmbeddingModel, err = embeddingPrompt.Run(); err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}
	if cfg.EmbeddingProvider == ProviderOllama {
		dimsPrompt := promptui.Prompt{
			Label:   "Embedding dimensions",
			Default: "768",
		}
		dims, err := dimsPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("embedding dimensions: %w", err)
		}
		if _, err := fmt.Sscanf(strings.TrimSpace(dims), "%d", &cfg.EmbeddingDimensions); err != nil {
			return nil, fmt.Errorf("embedding dimensions must be a number: %w", err)
		}
	}

	// 3. Corpus source.
	sourcePrompt := promptui.Select{
		Label: "Where does the wiki content live?",
		Items: []string{
			"JSON file (array of pages with title/content/url)",
			"Directory of markdown or text files",
		},
	}
	sourceIdx, _, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("corpus source: %w", err)
	}
	if sourceIdx == 0 {
		pathPrompt := promptui.Prompt{
			Label:   "Path to the wiki JSON file",
			Default: cfg.CorpusFile,
		}
		if cfg.CorpusFile, err = pathPrompt.Run(); err != nil {
			return nil, fmt.Errorf("corpus file: %w", err)
		}
		cfg.CorpusDir = ""
	} else {
		dirPrompt := promptui.Prompt{
			Label:   "Path to the wiki directory",
			Default: "wiki",
		}
		if cfg.CorpusDir, err = dirPrompt.Run(); err != nil {
			return nil, fmt.Errorf("corpus dir: %w", err)
		}
		cfg.CorpusFile = ""
	}

	// 4. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory for the index and answer cache",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running wikirag ask.\n", envVar)
	}

	configPath := ".wikirag.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
