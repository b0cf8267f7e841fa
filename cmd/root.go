package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "wikirag",
	Short: "Retrieval-augmented question answering over a wiki",
	Long: `Wikirag indexes a wiki corpus into a hybrid title and vector index and
answers questions grounded strictly in the wiki content. Answers are
cached on disk and invalidated automatically when the wiki changes.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".wikirag.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
