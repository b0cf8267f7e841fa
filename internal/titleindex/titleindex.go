// Package titleindex maps normalized wiki page titles to chunk positions
// for exact and per-word lexical matching.
package titleindex

import (
	"strings"

	"github.com/trotybot/wikirag/internal/chunker"
)

// minWordLen is the minimum normalized length for a standalone word lookup.
const minWordLen = 3

// Index is an immutable lookup table from normalized title keys to chunk
// positions. Build it once; concurrent reads need no locking.
//
// When two different documents normalize to the same title key, the first
// one in corpus order wins. That is a corpus-hygiene assumption: wikis are
// expected not to carry two pages whose titles differ only in punctuation.
type Index struct {
	keys    map[string]int
	byTitle map[string][]int
}

// Build indexes the given chunks. For each distinct title, the first chunk
// encountered is the canonical position; every key derived from the title
// (normalized form and raw lowercase) maps to it. All positions per title
// are retained for sibling expansion.
func Build(chunks []chunker.Chunk) *Index {
	idx := &Index{
		keys:    make(map[string]int),
		byTitle: make(map[string][]int),
	}

	for pos, c := range chunks {
		if _, seen := idx.byTitle[c.Title]; !seen {
			key := NormalizeKey(c.Title)
			if key != "" {
				if _, taken := idx.keys[key]; !taken {
					idx.keys[key] = pos
				}
			}
			lower := strings.ToLower(c.Title)
			if _, taken := idx.keys[lower]; !taken {
				idx.keys[lower] = pos
			}
		}
		idx.byTitle[c.Title] = append(idx.byTitle[c.Title], pos)
	}

	return idx
}

// LookupExact returns the canonical chunk position for a normalized query,
// matching either the normalized or raw-lowercase title key.
func (idx *Index) LookupExact(normalizedQuery string) (int, bool) {
	pos, ok := idx.keys[normalizedQuery]
	return pos, ok
}

// LookupSubstring returns the canonical position for the longest indexed
// title key contained in the normalized query, so "whatisthearcfurnace"
// finds "arcfurnace". Keys shorter than three characters are skipped; ties
// on length resolve lexicographically for determinism.
func (idx *Index) LookupSubstring(normalizedQuery string) (int, bool) {
	best := ""
	bestPos := 0
	for key, pos := range idx.keys {
		if len(key) < minWordLen || !strings.Contains(normalizedQuery, key) {
			continue
		}
		if len(key) > len(best) || (len(key) == len(best) && key < best) {
			best, bestPos = key, pos
		}
	}
	return bestPos, best != ""
}

// LookupWord returns the chunk position for a single query word. Words
// shorter than three characters after normalization never match.
func (idx *Index) LookupWord(word string) (int, bool) {
	key := NormalizeKey(word)
	if len(key) < minWordLen {
		return 0, false
	}
	pos, ok := idx.keys[key]
	return pos, ok
}

// Positions returns every chunk position sharing the given raw title, in
// chunk order. Used by the retriever to expand an exact title hit to the
// document's sibling chunks.
func (idx *Index) Positions(title string) []int {
	return idx.byTitle[title]
}

// NormalizeKey lowercases s and strips dots, whitespace, hyphens and
// underscores, so "S.T.F.R." and "stfr" share a key. This is the loose
// normalizer used for index keys; match scoring uses a stricter one.
func NormalizeKey(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case '.', ' ', '\t', '\n', '\r', '-', '_':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
