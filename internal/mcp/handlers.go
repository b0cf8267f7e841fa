package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/trotybot/wikirag/internal/retriever"
)

// handleWikiSearch retrieves ranked chunks for a query.
func (s *Server) handleWikiSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 3)
	if limit <= 0 {
		limit = 3
	}

	results, err := s.engine.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No wiki content matched the query."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleWikiAsk runs the full pipeline and returns the grounded answer.
func (s *Server) handleWikiAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	answer, err := s.engine.Answer(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answer failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(answer.Text)
	if len(answer.Sources) > 0 {
		sb.WriteString("\n\nSources:\n")
		for _, src := range answer.Sources {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", src.Title, src.URL))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults renders results as a markdown list with scores.
func formatSearchResults(results []retriever.Result) string {
	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("## %d. %s (score %.3f)\n", i+1, r.Title, r.Score))
		if r.URL != "" {
			sb.WriteString(fmt.Sprintf("URL: %s\n", r.URL))
		}
		sb.WriteString("\n")
		sb.WriteString(r.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
