package cmd

import (
	"github.com/spf13/cobra"

	"github.com/trotybot/wikirag/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize wikirag configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure wikirag for your wiki and generates a .wikirag.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
