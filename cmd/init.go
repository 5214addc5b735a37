package cmd

import (
	"github.com/spf13/cobra"

	"github.com/docgpt-ai/docgpt/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize docgpt configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure docgpt and generates a .docgpt.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
