package mcp

import "github.com/mark3labs/mcp-go/mcp"

// wikiSearchTool retrieves ranked wiki chunks without generating an answer.
var wikiSearchTool = mcp.NewTool("wiki_search",
	mcp.WithDescription("Search the wiki for chunks relevant to a query. Combines exact title matching with semantic similarity and returns ranked excerpts with their source pages."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query or page title"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 3)"),
	),
)

// wikiAskTool runs the full retrieval and generation pipeline.
var wikiAskTool = mcp.NewTool("wiki_ask",
	mcp.WithDescription("Ask a question about the wiki. Retrieves the most relevant pages and generates an answer grounded strictly in their content, with the source pages listed."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to answer from the wiki"),
	),
)
