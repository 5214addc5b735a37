package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docgpt-ai/docgpt/internal/db"
	"github.com/docgpt-ai/docgpt/internal/history"
	"github.com/docgpt-ai/docgpt/internal/ingest"
	"github.com/docgpt-ai/docgpt/internal/ledger"
	"github.com/docgpt-ai/docgpt/internal/server"
	"github.com/docgpt-ai/docgpt/internal/session"
	"github.com/docgpt-ai/docgpt/internal/webui"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docGPT chat web server",
	Long:  `Starts the docGPT web server: a browser chat UI with document upload, per-session API keys and streaming answers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		led, err := ledger.New(cfg.KnowledgeBase)
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}

		dbPath := filepath.Join(cfg.KnowledgeBase, "docgpt.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		manager := session.NewManager(engineFactory(cfg))
		ui := webui.New(manager, ingest.New(led), history.NewStore(database))

		srv := server.New(server.Config{
			Port:     servePort,
			AllowAll: serveAllowAll,
		})
		ui.RegisterRoutes(srv.Router())

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "docgpt v%s starting on port %d\n", Version, servePort)
		fmt.Fprintf(os.Stderr, "  Knowledge base: %s\n", cfg.KnowledgeBase)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "Allow all CORS origins")
	rootCmd.AddCommand(serveCmd)
}
