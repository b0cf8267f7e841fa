// Package chunker splits wiki documents into overlapping, boundary-aware
// text chunks used as retrieval units.
package chunker

import (
	"strings"

	"github.com/trotybot/wikirag/internal/corpus"
)

// Chunk is a bounded span of a document's text. Chunks from the same
// document share DocID and Title; Index is the zero-based, document-local
// ordinal.
type Chunk struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
	DocID   string `json:"doc_id"`
	Index   int    `json:"chunk_index"`
}

// Boundary lookahead windows past the raw cut point.
const (
	paragraphLookahead = 100
	sentenceLookahead  = 50
)

// Splitter produces deterministic chunk sequences for fixed parameters.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter. Overlap is clamped below size so the window
// always advances.
func New(size, overlap int) Splitter {
	if size <= 0 {
		size = 1200
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size/2 {
		overlap = size / 4
	}
	return Splitter{size: size, overlap: overlap}
}

// Split cuts the document into chunks. Documents no longer than the chunk
// size yield a single chunk. Otherwise the content is scanned in windows,
// each cut preferring a paragraph break, then a sentence end, then the raw
// window edge; consecutive chunks share an overlap region so context is not
// lost across cut points.
func (s Splitter) Split(doc corpus.Document) []Chunk {
	content := doc.Content

	mk := func(text string, idx int) Chunk {
		return Chunk{
			Title:   doc.Title,
			Content: text,
			URL:     doc.URL,
			DocID:   doc.ID,
			Index:   idx,
		}
	}

	if len(content) <= s.size {
		text := strings.TrimSpace(content)
		if text == "" {
			return nil
		}
		return []Chunk{mk(text, 0)}
	}

	var chunks []Chunk
	start := 0
	for len(content)-start > s.overlap {
		end := start + s.size
		var cut int
		if end >= len(content) {
			cut = len(content)
		} else {
			cut = s.cutPoint(content, start, end)
		}

		if text := strings.TrimSpace(content[start:cut]); text != "" {
			chunks = append(chunks, mk(text, len(chunks)))
		}

		if cut >= len(content) {
			break
		}
		next := cut - s.overlap
		if next <= start {
			// No boundary made progress past the overlap; advance hard.
			next = cut
		}
		start = next
	}

	return chunks
}

// cutPoint searches backward from the window end for the latest natural
// boundary: a paragraph break within [end-size/2, end+100], else a sentence
// terminator within [end-size/2, end+50], else the raw window edge.
func (s Splitter) cutPoint(content string, start, end int) int {
	lo := end - s.size/2
	if lo < start {
		lo = start
	}

	hi := end + paragraphLookahead
	if hi > len(content) {
		hi = len(content)
	}
	if idx := strings.LastIndex(content[lo:hi], "\n\n"); idx >= 0 {
		return lo + idx
	}

	hi = end + sentenceLookahead
	if hi > len(content) {
		hi = len(content)
	}
	if idx := strings.LastIndex(content[lo:hi], ". "); idx >= 0 {
		// Keep the terminator with the chunk it ends.
		return lo + idx + 2
	}

	return end
}
