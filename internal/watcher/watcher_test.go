package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/docgpt-ai/docgpt/internal/engine"
	"github.com/docgpt-ai/docgpt/internal/extract"
	"github.com/docgpt-ai/docgpt/internal/ingest"
	"github.com/docgpt-ai/docgpt/internal/ledger"
	"github.com/docgpt-ai/docgpt/internal/llm"
	"github.com/docgpt-ai/docgpt/internal/session"
)

type countingEngine struct {
	mu    sync.Mutex
	kinds []extract.Kind
}

func (e *countingEngine) Add(_ context.Context, _ string, kind extract.Kind) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.kinds = append(e.kinds, kind)
	return nil
}

func (e *countingEngine) Chat(context.Context, string) (llm.Stream, error) {
	return nil, errors.New("not implemented")
}

func (e *countingEngine) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.kinds)
}

func newTestWatcher(t *testing.T) (*Watcher, *countingEngine, chan Result) {
	t.Helper()

	l, err := ledger.New(t.TempDir())
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}

	eng := &countingEngine{}
	manager := session.NewManager(func(string) (engine.Engine, error) { return eng, nil })
	sess := manager.GetOrCreate("watch")
	sess.SetCredential("sk-test")

	results := make(chan Result, 16)
	w := New(ingest.New(l), sess, 20*time.Millisecond)
	w.OnResult = func(r Result) { results <- r }
	return w, eng, results
}

func waitResult(t *testing.T, results chan Result) Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for ingestion result")
		return Result{}
	}
}

func TestRunIngestsNewFile(t *testing.T) {
	w, eng, results := newTestWatcher(t)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, dir) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "report.txt"), []byte("quarterly numbers"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	res := waitResult(t, results)
	if res.Err != nil {
		t.Fatalf("ingest error: %v", res.Err)
	}
	if res.FileName != "report.txt" || !res.Added {
		t.Errorf("result = %+v", res)
	}
	if eng.calls() != 1 {
		t.Errorf("engine Add calls = %d, want 1", eng.calls())
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestRunIgnoresUnsupportedExtensions(t *testing.T) {
	w, eng, results := newTestWatcher(t)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, dir)

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	res := waitResult(t, results)
	if res.FileName != "notes.txt" {
		t.Errorf("ingested %q, want notes.txt only", res.FileName)
	}
	if eng.calls() != 1 {
		t.Errorf("engine Add calls = %d, want 1", eng.calls())
	}
}

func TestRunDebouncesWriteBursts(t *testing.T) {
	w, eng, results := newTestWatcher(t)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, dir)

	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "draft.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.WriteString("more text\n"); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := f.Sync(); err != nil {
			t.Fatalf("sync: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	f.Close()

	res := waitResult(t, results)
	if res.Err != nil || !res.Added {
		t.Fatalf("result = %+v", res)
	}

	// No second ingestion should follow the burst.
	select {
	case extra := <-results:
		t.Errorf("unexpected second result: %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
	if eng.calls() != 1 {
		t.Errorf("engine Add calls = %d, want 1", eng.calls())
	}
}

func TestScheduleDoesNotBlockAfterCancel(t *testing.T) {
	w, _, _ := newTestWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// No reader and a buffer smaller than the number of timers: every
	// fire past the buffer must take the cancellation branch.
	ready := make(chan string, 2)
	for i := 0; i < 20; i++ {
		w.schedule(ctx, fmt.Sprintf("file-%d.txt", i), ready)
	}

	deadline := time.After(3 * time.Second)
	for {
		w.mu.Lock()
		n := len(w.pending)
		w.mu.Unlock()
		if n == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("%d timers still pending", n)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRunStopsPendingTimersOnExit(t *testing.T) {
	w, eng, _ := newTestWatcher(t)
	w.debounce = 10 * time.Second

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, dir) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "slow.txt"), []byte("data"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	// Give the event time to arm its timer, then shut down mid-debounce.
	time.Sleep(200 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	w.mu.Lock()
	n := len(w.pending)
	w.mu.Unlock()
	if n != 0 {
		t.Errorf("%d timers left armed after Run returned", n)
	}
	if eng.calls() != 0 {
		t.Errorf("engine Add calls = %d, want 0 (debounce never elapsed)", eng.calls())
	}
}

func TestRunRejectsMissingDirectory(t *testing.T) {
	w, _, _ := newTestWatcher(t)

	err := w.Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
