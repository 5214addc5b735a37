package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/docgpt-ai/docgpt/internal/ingest"
	"github.com/docgpt-ai/docgpt/internal/ledger"
	"github.com/docgpt-ai/docgpt/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <pattern>...",
	Short: "Add documents to the knowledge base",
	Long: `Adds the matching files to the knowledge base. Patterns support
doublestar globs, e.g. "docs/**/*.pdf". Files already in the knowledge
base are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		apiKey, err := apiKeyFromEnv()
		if err != nil {
			return err
		}

		paths, err := expandPatterns(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no files match the given patterns")
		}

		led, err := ledger.New(cfg.KnowledgeBase)
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}

		sess := cliSession(cfg, apiKey)
		ing := ingest.New(led)

		reporter := progress.NewReporter()
		reporter.Start(len(paths))

		var added, skipped, failed int
		for i, path := range paths {
			reporter.Update(i+1, path)

			f, err := os.Open(path)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				continue
			}

			ok, err := ing.Ingest(cmd.Context(), sess, path, f)
			f.Close()
			switch {
			case err != nil:
				failed++
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			case ok:
				added++
			default:
				skipped++
			}
		}
		reporter.Finish()

		fmt.Printf("Added %d, skipped %d, failed %d\n", added, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d file(s) failed to ingest", failed)
		}
		return nil
	},
}

// expandPatterns resolves doublestar globs into a sorted, de-duplicated
// file list. A pattern with no glob characters is treated as a literal path.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if matches == nil {
			// Literal path; let the open fail later with a clear error.
			matches = []string{pattern}
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
