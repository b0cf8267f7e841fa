package corpus

import "context"

// Document is one wiki page. Documents are immutable once loaded; the
// retrieval core never mutates them.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Provider supplies the ordered document list the index is built from.
type Provider interface {
	Load(ctx context.Context) ([]Document, error)
}

// Stamper is implemented by providers that can summarize their source from
// file metadata alone. An unchanged stamp means the corpus content can be
// assumed unchanged without reloading it, cheap enough to check on every
// query.
type Stamper interface {
	Stamp() (string, error)
}
