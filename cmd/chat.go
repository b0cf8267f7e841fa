package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/trotybot/wikirag/internal/progress"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question answering session",
	Long:  `Starts a REPL that answers questions from the wiki. Type "quit" or press Ctrl+D to exit.`,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, progress.NewReporter())
	if err != nil {
		return err
	}
	defer a.Close()

	// Build up front so the first question is not slowed by indexing.
	if err := a.index.Ensure(ctx); err != nil {
		return err
	}
	fmt.Printf("Ready: %d chunks indexed, %d cached answers. Ask away.\n\n", a.index.ChunkCount(), a.cache.Len())

	for {
		prompt := promptui.Prompt{Label: "You"}
		question, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				fmt.Println("Bye.")
				return nil
			}
			return err
		}

		question = strings.TrimSpace(question)
		if question == "" {
			continue
		}
		if question == "quit" || question == "exit" {
			fmt.Println("Bye.")
			return nil
		}

		answer, err := a.engine.Answer(ctx, question)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}

		fmt.Printf("\n%s\n", answer.Text)
		if len(answer.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range answer.Sources {
				fmt.Printf("  - %s\n", src.Title)
			}
		}
		fmt.Println()
	}
}
