package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docgpt-ai/docgpt/internal/engine"
	"github.com/docgpt-ai/docgpt/internal/ledger"
	mcpserver "github.com/docgpt-ai/docgpt/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document question-answering and search tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		apiKey, err := apiKeyFromEnv()
		if err != nil {
			return err
		}

		rag, err := engine.FromConfig(cfg, apiKey)
		if err != nil {
			return fmt.Errorf("creating engine: %w", err)
		}

		led, err := ledger.New(cfg.KnowledgeBase)
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "docgpt MCP server started on stdio (knowledge base=%s, chunks=%d)\n",
			cfg.KnowledgeBase, rag.Store().Count())

		srv := mcpserver.NewServer(rag, rag.Store(), led)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
