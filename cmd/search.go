package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trotybot/wikirag/internal/progress"
	"github.com/trotybot/wikirag/internal/retriever"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve the most relevant wiki chunks without generating an answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntP("limit", "k", 0, "maximum number of results (default from config top_k)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, progress.NewReporter())
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.engine.Search(ctx, query, limit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	printSearchResults(results)
	return nil
}

func printSearchResults(results []retriever.Result) {
	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("  %d. [%.3f] %s\n", i+1, r.Score, r.Title)
		if r.URL != "" {
			fmt.Printf("     %s\n", r.URL)
		}
		fmt.Printf("     %s\n\n", truncate(r.Content, 160))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
