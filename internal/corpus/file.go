package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// FileProvider loads documents from a single JSON file containing an array
// of pages, the format produced by the wiki scraper.
type FileProvider struct {
	Path string
}

// NewFileProvider creates a provider reading the given JSON corpus file.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) Load(_ context.Context) ([]Document, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %s: %w", p.Path, err)
	}

	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing corpus file %s: %w", p.Path, err)
	}

	// Scraper output may omit ids; derive a stable one from list position.
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = "page-" + strconv.Itoa(i)
		}
	}

	return docs, nil
}

// Stamp summarizes the corpus file from its size and modification time.
func (p *FileProvider) Stamp() (string, error) {
	info, err := os.Stat(p.Path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano()), nil
}
