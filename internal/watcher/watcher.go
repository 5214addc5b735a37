// Package watcher auto-ingests documents dropped into a watched directory.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docgpt-ai/docgpt/internal/ingest"
	"github.com/docgpt-ai/docgpt/internal/session"
)

// DefaultDebounce covers the gap between a file appearing and its writer
// finishing; editors and downloads emit several write events per save.
const DefaultDebounce = 500 * time.Millisecond

var watchedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".docx": true,
}

// Result reports the outcome of one auto-ingestion attempt.
type Result struct {
	FileName string
	Added    bool
	Err      error
}

// Watcher feeds files created or modified under a directory into the
// ingestion workflow. Events for the same file are debounced so a file is
// ingested once per burst of writes.
type Watcher struct {
	ingestor *ingest.Ingestor
	sess     *session.Session
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer

	// OnResult, when set, receives the outcome of every attempt.
	OnResult func(Result)
}

// New creates a Watcher that ingests into the given session.
func New(ingestor *ingest.Ingestor, sess *session.Session, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		ingestor: ingestor,
		sess:     sess,
		debounce: debounce,
		pending:  make(map[string]*time.Timer),
	}
}

// Run watches dir until the context is cancelled. Only files with a
// supported extension are considered; other files are ignored silently.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watching %s: not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	// Timers armed at shutdown must not fire into a drained channel.
	defer w.stopPending()

	ready := make(chan string, 16)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !watchedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			w.schedule(ctx, event.Name, ready)

		case path := <-ready:
			w.ingestFile(ctx, path)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer for path. The fire
// callback gives up on a cancelled context instead of blocking on a
// channel nobody drains anymore.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

// stopPending cancels all armed debounce timers.
func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	fileName := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		w.report(Result{FileName: fileName, Err: err})
		return
	}
	defer f.Close()

	added, err := w.ingestor.Ingest(ctx, w.sess, fileName, f)
	w.report(Result{FileName: fileName, Added: added, Err: err})
}

func (w *Watcher) report(res Result) {
	if w.OnResult != nil {
		w.OnResult(res)
		return
	}
	switch {
	case res.Err != nil:
		log.Printf("watcher: %s: %v", res.FileName, res.Err)
	case res.Added:
		log.Printf("watcher: added %s to knowledge base", res.FileName)
	default:
		log.Printf("watcher: skipped %s (already in knowledge base)", res.FileName)
	}
}
