// Package engine runs the full question answering pipeline: cache lookup,
// index readiness, retrieval, grounded generation, and cache write-back.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/trotybot/wikirag/internal/cache"
	"github.com/trotybot/wikirag/internal/config"
	"github.com/trotybot/wikirag/internal/index"
	"github.com/trotybot/wikirag/internal/llm"
	"github.com/trotybot/wikirag/internal/retriever"
)

// FailurePlaceholder is returned to the user when generation fails. It is
// never written to the cache.
const FailurePlaceholder = "Sorry, I could not generate an answer right now. Please try again."

// notInWiki is the phrase the model is instructed to use when the context
// does not contain the answer.
const notInWiki = "This information is not available in the wiki."

// Answer is the result of one question.
type Answer struct {
	Text      string         `json:"answer"`
	Sources   []cache.Source `json:"sources"`
	FromCache bool           `json:"from_cache"`
}

// Engine wires the index, cache, and answer generator together. Safe for
// concurrent use.
type Engine struct {
	cfg      *config.Config
	idx      *index.Index
	cache    *cache.AnswerCache
	provider llm.Provider
}

// New creates an Engine over an index and cache that share the same
// database.
func New(cfg *config.Config, idx *index.Index, answerCache *cache.AnswerCache, provider llm.Provider) *Engine {
	return &Engine{
		cfg:      cfg,
		idx:      idx,
		cache:    answerCache,
		provider: provider,
	}
}

// Search makes the index ready and retrieves the top k chunks for the
// question without generating an answer.
func (e *Engine) Search(ctx context.Context, question string, k int) ([]retriever.Result, error) {
	if k <= 0 {
		k = e.cfg.TopK
	}
	if err := e.idx.Ensure(ctx); err != nil {
		return nil, err
	}
	return e.idx.Retrieve(ctx, question, k)
}

// Answer runs the full pipeline. The index staleness check runs before the
// cache lookup: a corpus change must empty the cache before any entry can
// be served. A cache hit then returns without touching the generator. On a
// miss, the retrieved chunks are assembled into a grounded prompt; a
// generation failure returns the placeholder answer with the sources that
// were found, and is not cached.
func (e *Engine) Answer(ctx context.Context, question string) (Answer, error) {
	if err := e.idx.Ensure(ctx); err != nil {
		return Answer{}, err
	}

	if entry, ok := e.cache.Get(question); ok {
		return Answer{Text: entry.Answer, Sources: entry.Sources, FromCache: true}, nil
	}

	results, err := e.idx.Retrieve(ctx, question, e.cfg.TopK)
	if err != nil {
		return Answer{}, err
	}

	sources := make([]cache.Source, 0, len(results))
	for _, res := range results {
		sources = append(sources, cache.Source{Title: res.Title, URL: res.URL})
	}

	text, err := e.generate(ctx, question, results)
	if err != nil {
		log.Printf("warning: answer generation failed: %v", err)
		return Answer{Text: FailurePlaceholder, Sources: sources}, nil
	}

	if err := e.cache.Put(question, text, sources); err != nil {
		// The answer is still good; only persistence of the cache failed.
		log.Printf("warning: caching answer failed: %v", err)
	}
	return Answer{Text: text, Sources: sources}, nil
}

func (e *Engine) generate(ctx context.Context, question string, results []retriever.Result) (string, error) {
	timeout := time.Duration(e.cfg.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPrompt(question, results)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("generator returned an empty answer")
	}
	return text, nil
}

// buildPrompt assembles the grounded prompt: strict instructions, the
// retrieved chunks as titled context blocks, then the question.
func buildPrompt(question string, results []retriever.Result) string {
	var blocks []string
	for _, res := range results {
		blocks = append(blocks, fmt.Sprintf("### %s\n%s", res.Title, res.Content))
	}
	context := strings.Join(blocks, "\n\n")

	return fmt.Sprintf(`You are a wiki assistant. Your ONLY job is to summarize and quote from the wiki context below.

STRICT RULES:
1. ONLY use information from the wiki context provided
2. DO NOT make up or infer any information not explicitly stated
3. If the answer is not in the wiki context, say %q
4. Quote specific details like power values, recipes, and instructions exactly as written

Wiki context:
%s

Question: %s

Answer using ONLY the wiki context above (no external knowledge):`, notInWiki, context, question)
}
