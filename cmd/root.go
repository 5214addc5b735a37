package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docgpt",
	Short: "Chat with your documents using OpenAI",
	Long: `docGPT builds a local knowledge base from your PDF, text and Word
documents and answers questions about them, streaming responses grounded
strictly in what the documents say. It serves a browser chat UI, ingests
files from the command line or a watched directory, and integrates with
AI agents via MCP.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// OPENAI_API_KEY may live in a local .env file.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".docgpt.yml", "config file path")
}
