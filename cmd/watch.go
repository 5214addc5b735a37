package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docgpt-ai/docgpt/internal/ingest"
	"github.com/docgpt-ai/docgpt/internal/ledger"
	"github.com/docgpt-ai/docgpt/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and auto-ingest new documents",
	Long: `Watches the given directory and adds every new or modified PDF, text
or Word document to the knowledge base. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		apiKey, err := apiKeyFromEnv()
		if err != nil {
			return err
		}

		led, err := ledger.New(cfg.KnowledgeBase)
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}

		sess := cliSession(cfg, apiKey)
		w := watcher.New(ingest.New(led), sess, watcher.DefaultDebounce)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "Watching %s for documents...\n", args[0])
		if err := w.Run(ctx, args[0]); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
