package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trotybot/wikirag/internal/progress"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question and get an answer grounded in the wiki",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, progress.NewReporter())
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.engine.Answer(ctx, question)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range answer.Sources {
			if src.URL != "" {
				fmt.Printf("  - %s (%s)\n", src.Title, src.URL)
			} else {
				fmt.Printf("  - %s\n", src.Title)
			}
		}
	}
	if answer.FromCache && verbose {
		fmt.Println("\n(served from cache)")
	}
	return nil
}
