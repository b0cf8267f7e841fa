// Package cache persists answers keyed by question with bounded,
// insertion-ordered eviction. Entries survive restarts; the whole cache is
// dropped when the corpus fingerprint changes.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/trotybot/wikirag/internal/db"
)

// Source identifies a wiki page an answer was grounded on.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Entry is one cached answer.
type Entry struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
}

// AnswerCache is a capacity-bounded FIFO cache, write-through to SQLite on
// every Put. Get/Put/InvalidateAll are safe for concurrent use; the mutex
// serializes the check-then-write path so concurrent misses cannot corrupt
// eviction order. Two concurrent generations of the same question race;
// last write wins.
type AnswerCache struct {
	mu       sync.Mutex
	mem      *fifoMap
	database *db.DB
}

// Key returns the cache key for a question: lowercased, trimmed, exact.
func Key(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// Open loads the persisted cache from the database, oldest entries first.
// If persisted rows exceed capacity (capacity was lowered between runs),
// the oldest overflow is evicted on load and removed from disk.
func Open(database *db.DB, capacity int) (*AnswerCache, error) {
	c := &AnswerCache{
		mem:      newFIFOMap(capacity),
		database: database,
	}

	rows, err := database.Query(`SELECT question, answer, sources FROM answer_cache ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("loading answer cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var question, answer, sourcesJSON string
		if err := rows.Scan(&question, &answer, &sourcesJSON); err != nil {
			return nil, fmt.Errorf("scanning cache row: %w", err)
		}
		var sources []Source
		if err := json.Unmarshal([]byte(sourcesJSON), &sources); err != nil {
			// Corrupt row: drop it rather than fail the whole cache.
			continue
		}
		if evicted, was := c.mem.put(question, Entry{Question: question, Answer: answer, Sources: sources}); was {
			if _, err := database.Exec(`DELETE FROM answer_cache WHERE question = ?`, evicted); err != nil {
				return nil, fmt.Errorf("evicting overflow row: %w", err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cache rows: %w", err)
	}

	return c, nil
}

// Get returns the cached entry for a question, if present. Reads never
// reorder the eviction queue.
func (c *AnswerCache) Get(question string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mem.get(Key(question))
}

// Put stores an answer, evicting the oldest entry when at capacity, and
// writes through to the database before returning.
func (c *AnswerCache) Put(question, answer string, sources []Source) error {
	key := Key(question)
	entry := Entry{Question: key, Answer: answer, Sources: sources}

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted, wasEvicted := c.mem.put(key, entry)

	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}
	if wasEvicted {
		if _, err := c.database.Exec(`DELETE FROM answer_cache WHERE question = ?`, evicted); err != nil {
			return fmt.Errorf("evicting cache row: %w", err)
		}
	}
	_, err = c.database.Exec(
		`INSERT INTO answer_cache (question, answer, sources) VALUES (?, ?, ?)
		 ON CONFLICT(question) DO UPDATE SET answer = excluded.answer, sources = excluded.sources`,
		key, answer, string(sourcesJSON))
	if err != nil {
		return fmt.Errorf("persisting cache entry: %w", err)
	}
	return nil
}

// InvalidateAll clears the cache and its durable rows. Must be called
// before serving any query after the corpus fingerprint changes.
func (c *AnswerCache) InvalidateAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem.clear()
	if _, err := c.database.Exec(`DELETE FROM answer_cache`); err != nil {
		return fmt.Errorf("clearing answer cache: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *AnswerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mem.len()
}
