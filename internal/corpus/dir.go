package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// DirProvider loads documents from a directory tree of markdown/text files.
// File paths are matched against include/exclude glob patterns; markdown
// files are reduced to plain text before indexing.
type DirProvider struct {
	Root    string
	Include []string
	Exclude []string
	BaseURL string

	md goldmark.Markdown
}

// NewDirProvider creates a provider over the given directory. Empty include
// means every file is considered.
func NewDirProvider(root string, include, exclude []string, baseURL string) *DirProvider {
	return &DirProvider{
		Root:    root,
		Include: include,
		Exclude: exclude,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		md:      goldmark.New(),
	}
}

func (p *DirProvider) Load(_ context.Context) ([]Document, error) {
	var paths []string
	err := filepath.WalkDir(p.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if p.matches(rel) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus dir %s: %w", p.Root, err)
	}

	// Stable document order keeps the corpus fingerprint order-independent
	// of filesystem iteration.
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(p.Root, rel))
		if err != nil {
			return nil, fmt.Errorf("reading corpus page %s: %w", rel, err)
		}

		title, content := p.extract(rel, data)
		if content == "" {
			continue
		}

		url := ""
		if p.BaseURL != "" {
			url = p.BaseURL + "/" + rel
		}
		docs = append(docs, Document{
			ID:      rel,
			Title:   title,
			URL:     url,
			Content: content,
		})
	}

	return docs, nil
}

// Stamp hashes the name, size, and modification time of every matching
// file. No file contents are read, so adding, removing, or editing a page
// changes the stamp at stat cost.
func (p *DirProvider) Stamp() (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(p.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !p.matches(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", rel, info.Size(), info.ModTime().UnixNano())
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (p *DirProvider) matches(rel string) bool {
	for _, pattern := range p.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(p.Include) == 0 {
		return true
	}
	for _, pattern := range p.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// extract returns the page title and plain-text content. Markdown files are
// parsed and flattened; the first heading becomes the title. Other files are
// used verbatim with the filename as title.
func (p *DirProvider) extract(rel string, data []byte) (string, string) {
	base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))

	if ext := strings.ToLower(filepath.Ext(rel)); ext != ".md" && ext != ".markdown" {
		return base, strings.TrimSpace(string(data))
	}

	doc := p.md.Parser().Parse(gmtext.NewReader(data))

	var sb strings.Builder
	title := ""
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Blank line between block-level nodes so paragraph boundaries
			// survive for the chunker.
			switch n.(type) {
			case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.Blockquote:
				sb.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Heading:
			if title == "" {
				title = string(t.Text(data))
			}
		case *ast.Text:
			sb.Write(t.Segment.Value(data))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})

	if title == "" {
		title = base
	}

	content := strings.TrimSpace(sb.String())
	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}
	return title, content
}
