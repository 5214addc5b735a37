// Package ingest implements the upload-to-knowledge-base workflow: ledger
// check, temp staging, engine add, ledger update, transcript confirmation.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docgpt-ai/docgpt/internal/extract"
	"github.com/docgpt-ai/docgpt/internal/ledger"
	"github.com/docgpt-ai/docgpt/internal/llm"
	"github.com/docgpt-ai/docgpt/internal/session"
)

// Ingestor adds uploaded files to the knowledge base exactly once.
type Ingestor struct {
	ledger *ledger.Ledger
}

// New creates an Ingestor over the given ledger.
func New(l *ledger.Ledger) *Ingestor {
	return &Ingestor{ledger: l}
}

// Ledger returns the ingestion ledger.
func (ing *Ingestor) Ledger() *ledger.Ledger { return ing.ledger }

// Ingest adds one uploaded file to the knowledge base. A file name already
// recorded in the ledger is skipped without contacting the engine; added
// reports whether the file was actually ingested. Errors abort this file
// and are meant to halt the caller's remaining batch.
func (ing *Ingestor) Ingest(ctx context.Context, sess *session.Session, fileName string, r io.Reader) (added bool, err error) {
	fileName = filepath.Base(fileName)

	known, err := ing.ledger.Contains(fileName)
	if err != nil {
		return false, err
	}
	if known {
		return false, nil
	}

	eng, err := sess.Engine()
	if err != nil {
		return false, err
	}

	ext := filepath.Ext(fileName)

	// Stage the upload to a uniquely named temp file keeping the original
	// extension; removal is deferred so cleanup also runs on failure.
	tmp, err := os.CreateTemp("", stagingPattern(fileName, ext))
	if err != nil {
		return false, fmt.Errorf("staging %s: %w", fileName, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return false, fmt.Errorf("staging %s: %w", fileName, err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("staging %s: %w", fileName, err)
	}

	kind := extract.KindForExtension(ext)
	if err := eng.Add(ctx, tmp.Name(), kind); err != nil {
		return false, fmt.Errorf("adding %s to knowledge base: %w", fileName, err)
	}

	if _, err := ing.ledger.Add(fileName); err != nil {
		return false, err
	}

	sess.Transcript().Append(llm.RoleAssistant, fmt.Sprintf("Added %s to knowledge base!", fileName))
	return true, nil
}

func stagingPattern(fileName, ext string) string {
	return strings.TrimSuffix(fileName, ext) + "-*" + ext
}
