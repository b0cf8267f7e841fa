package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trotybot/wikirag/internal/progress"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the wiki index",
	Long: `Chunks the wiki corpus, embeds every chunk, and persists the index under
the data directory. If the corpus has not changed since the last build,
nothing is re-embedded unless --rebuild is given.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Bool("rebuild", false, "rebuild from scratch even if the corpus is unchanged")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rebuild, _ := cmd.Flags().GetBool("rebuild")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, progress.NewReporter())
	if err != nil {
		return err
	}
	defer a.Close()

	if rebuild {
		err = a.index.Rebuild(ctx)
	} else {
		err = a.index.Ensure(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Index %s: %d chunks, fingerprint %.12s\n", a.index.State(), a.index.ChunkCount(), a.index.Fingerprint())
	return nil
}
