package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trotybot/wikirag/internal/mcp"
	"github.com/trotybot/wikirag/internal/progress"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve wiki search and ask tools over MCP stdio",
	Long: `Starts an MCP server on stdio exposing the wiki_search and wiki_ask tools,
so AI assistants can ground their answers in the wiki. All logging goes
to stderr; stdout carries the protocol.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Progress output would corrupt the stdio protocol.
	a, err := newApp(cfg, progress.NopReporter{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.index.Ensure(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wikirag MCP server ready: %d chunks indexed\n", a.index.ChunkCount())

	return mcp.NewServer(a.engine).Serve()
}
