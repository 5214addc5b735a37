package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docgpt-ai/docgpt/internal/engine"
	"github.com/docgpt-ai/docgpt/internal/extract"
	"github.com/docgpt-ai/docgpt/internal/ledger"
	"github.com/docgpt-ai/docgpt/internal/llm"
	"github.com/docgpt-ai/docgpt/internal/session"
)

type addCall struct {
	path string
	kind extract.Kind
	data string
}

// recordingEngine captures Add calls, including the staged file's content
// at call time so staging can be verified after cleanup.
type recordingEngine struct {
	calls  []addCall
	addErr error
}

func (e *recordingEngine) Add(_ context.Context, path string, kind extract.Kind) error {
	data, _ := os.ReadFile(path)
	e.calls = append(e.calls, addCall{path: path, kind: kind, data: string(data)})
	return e.addErr
}

func (e *recordingEngine) Chat(context.Context, string) (llm.Stream, error) {
	return nil, errors.New("not implemented")
}

func setup(t *testing.T) (*Ingestor, *session.Session, *recordingEngine) {
	t.Helper()

	l, err := ledger.New(t.TempDir())
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}

	eng := &recordingEngine{}
	m := session.NewManager(func(string) (engine.Engine, error) { return eng, nil })
	sess := m.GetOrCreate("sess-1")
	sess.SetCredential("sk-test")

	return New(l), sess, eng
}

func TestIngestStagesAndRecords(t *testing.T) {
	ing, sess, eng := setup(t)

	added, err := ing.Ingest(context.Background(), sess, "report.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !added {
		t.Error("expected added=true for a new file")
	}

	if len(eng.calls) != 1 {
		t.Fatalf("engine Add calls = %d, want 1", len(eng.calls))
	}
	call := eng.calls[0]
	if call.kind != extract.KindPDF {
		t.Errorf("kind = %q, want pdf_file", call.kind)
	}
	if filepath.Ext(call.path) != ".pdf" {
		t.Errorf("staged file %q should keep the .pdf extension", call.path)
	}
	if call.data != "%PDF-1.4 fake" {
		t.Errorf("staged content = %q", call.data)
	}

	// The temp file is cleaned up after the workflow returns.
	if _, err := os.Stat(call.path); !os.IsNotExist(err) {
		t.Errorf("temp file %s should be removed", call.path)
	}

	names, err := ing.Ledger().Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(names) != 1 || names[0] != "report.pdf" {
		t.Errorf("ledger = %v", names)
	}

	msgs := sess.Transcript().Messages()
	last := msgs[len(msgs)-1]
	if last.Role != llm.RoleAssistant || last.Content != "Added report.pdf to knowledge base!" {
		t.Errorf("confirmation message = %+v", last)
	}
}

func TestIngestSkipsKnownFile(t *testing.T) {
	ing, sess, eng := setup(t)

	if _, err := ing.Ledger().Add("report.pdf"); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	added, err := ing.Ingest(context.Background(), sess, "report.pdf", strings.NewReader("ignored"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if added {
		t.Error("re-upload of a known file must be a no-op")
	}
	if len(eng.calls) != 0 {
		t.Errorf("engine contacted %d times for a known file, want 0", len(eng.calls))
	}
}

func TestIngestMissingCredential(t *testing.T) {
	l, err := ledger.New(t.TempDir())
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	eng := &recordingEngine{}
	m := session.NewManager(func(string) (engine.Engine, error) { return eng, nil })
	sess := m.GetOrCreate("sess-1") // no credential set

	ing := New(l)
	_, err = ing.Ingest(context.Background(), sess, "report.pdf", strings.NewReader("data"))
	if !errors.Is(err, session.ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}

	if len(eng.calls) != 0 {
		t.Error("engine must not be contacted without a credential")
	}
	names, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("ledger must stay unchanged, got %v", names)
	}
}

func TestIngestEngineFailure(t *testing.T) {
	ing, sess, eng := setup(t)
	eng.addErr = errors.New("embedding provider unavailable")

	_, err := ing.Ingest(context.Background(), sess, "notes.txt", strings.NewReader("text"))
	if err == nil {
		t.Fatal("expected engine failure to propagate")
	}

	// Ledger unchanged and temp file cleaned up despite the failure.
	names, loadErr := ing.Ledger().Load()
	if loadErr != nil {
		t.Fatalf("Load: %v", loadErr)
	}
	if len(names) != 0 {
		t.Errorf("ledger = %v, want empty", names)
	}
	if len(eng.calls) == 1 {
		if _, statErr := os.Stat(eng.calls[0].path); !os.IsNotExist(statErr) {
			t.Errorf("temp file %s should be removed on failure", eng.calls[0].path)
		}
	}
}

func TestIngestExtensionMapping(t *testing.T) {
	tests := []struct {
		fileName string
		want     extract.Kind
	}{
		{"a.PDF", extract.KindPDF},
		{"b.txt", extract.KindText},
		{"c.docx", extract.KindDocx},
		{"d.csv", extract.KindText},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			ing, sess, eng := setup(t)
			if _, err := ing.Ingest(context.Background(), sess, tt.fileName, strings.NewReader("data")); err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			if len(eng.calls) != 1 || eng.calls[0].kind != tt.want {
				t.Errorf("kind = %v, want %q", eng.calls, tt.want)
			}
		})
	}
}

type scriptedStream struct {
	fragments []string
}

func (s *scriptedStream) Recv() (string, error) {
	if len(s.fragments) == 0 {
		return "", io.EOF
	}
	frag := s.fragments[0]
	s.fragments = s.fragments[1:]
	return frag, nil
}

func (s *scriptedStream) Close() error { return nil }

type chattyEngine struct {
	recordingEngine
	answer []string
}

func (e *chattyEngine) Chat(context.Context, string) (llm.Stream, error) {
	return &scriptedStream{fragments: e.answer}, nil
}

// One ingestion followed by one chat turn leaves the transcript in order:
// greeting, confirmation, user query, assistant response.
func TestTranscriptOrderingAcrossWorkflows(t *testing.T) {
	l, err := ledger.New(t.TempDir())
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	eng := &chattyEngine{answer: []string{"Revenue ", "grew."}}
	m := session.NewManager(func(string) (engine.Engine, error) { return eng, nil })
	sess := m.GetOrCreate("sess-1")
	sess.SetCredential("sk-test")

	ctx := context.Background()
	if _, err := New(l).Ingest(ctx, sess, "report.pdf", strings.NewReader("data")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := sess.Respond(ctx, "How did revenue do?", nil); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	msgs := sess.Transcript().Messages()
	if len(msgs) != 4 {
		t.Fatalf("transcript length = %d, want 4", len(msgs))
	}
	wantRoles := []llm.Role{llm.RoleAssistant, llm.RoleAssistant, llm.RoleUser, llm.RoleAssistant}
	for i, role := range wantRoles {
		if msgs[i].Role != role {
			t.Errorf("message %d role = %q, want %q", i, msgs[i].Role, role)
		}
	}
	if msgs[1].Content != "Added report.pdf to knowledge base!" {
		t.Errorf("confirmation = %q", msgs[1].Content)
	}
	if msgs[2].Content != "How did revenue do?" {
		t.Errorf("user message = %q", msgs[2].Content)
	}
	if msgs[3].Content != "Revenue grew." {
		t.Errorf("assistant message = %q", msgs[3].Content)
	}
}

func TestIngestSecondFileAppends(t *testing.T) {
	ing, sess, _ := setup(t)
	ctx := context.Background()

	if _, err := ing.Ingest(ctx, sess, "report.pdf", strings.NewReader("one")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := ing.Ingest(ctx, sess, "notes.txt", strings.NewReader("two")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	names, err := ing.Ledger().Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(names) != 2 || names[0] != "report.pdf" || names[1] != "notes.txt" {
		t.Errorf("ledger = %v", names)
	}
}
