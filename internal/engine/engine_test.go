package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docgpt-ai/docgpt/internal/extract"
	"github.com/docgpt-ai/docgpt/internal/llm"
	"github.com/docgpt-ai/docgpt/internal/vectordb"
)

// memStore is an in-memory VectorStore capturing added documents and
// returning everything it holds on search.
type memStore struct {
	docs []vectordb.Document
}

func (m *memStore) AddDocuments(_ context.Context, docs []vectordb.Document) error {
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *memStore) Search(_ context.Context, _ string, limit int) ([]vectordb.SearchResult, error) {
	var results []vectordb.SearchResult
	for _, d := range m.docs {
		if len(results) == limit {
			break
		}
		results = append(results, vectordb.SearchResult{Document: d, Similarity: 1})
	}
	return results, nil
}

func (m *memStore) Count() int { return len(m.docs) }

// scriptedStream yields fixed fragments then EOF.
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

// fakeProvider records requests and replies with canned content.
type fakeProvider struct {
	lastRequest llm.CompletionRequest
	fragments   []string
	answer      string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.lastRequest = req
	return &llm.CompletionResponse{Content: p.answer}, nil
}

func (p *fakeProvider) Stream(_ context.Context, req llm.CompletionRequest) (llm.Stream, error) {
	p.lastRequest = req
	return &scriptedStream{fragments: p.fragments}, nil
}

func testOptions() Options {
	return Options{
		Model:          "gpt-4o",
		Temperature:    0.5,
		MaxTokens:      1000,
		TopP:           1,
		SystemPrompt:   "Answer from the documents only.",
		ChunkSize:      2000,
		ChunkOverlap:   0,
		RetrievalLimit: 5,
	}
}

func TestAddStoresChunksWithMetadata(t *testing.T) {
	store := &memStore{}
	rag := NewRAG(store, &fakeProvider{}, testOptions())

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("The project ships in June."), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := rag.Add(context.Background(), path, extract.KindText); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if len(store.docs) != 1 {
		t.Fatalf("expected 1 stored chunk, got %d", len(store.docs))
	}
	doc := store.docs[0]
	if doc.Metadata.Source != "notes.txt" {
		t.Errorf("source = %q, want notes.txt", doc.Metadata.Source)
	}
	if doc.Metadata.Kind != "text_file" {
		t.Errorf("kind = %q, want text_file", doc.Metadata.Kind)
	}
	if !strings.Contains(doc.Content, "ships in June") {
		t.Errorf("chunk content = %q", doc.Content)
	}
}

func TestAddEmptyFileFails(t *testing.T) {
	store := &memStore{}
	rag := NewRAG(store, &fakeProvider{}, testOptions())

	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := rag.Add(context.Background(), path, extract.KindText); err == nil {
		t.Error("expected error for empty document")
	}
	if len(store.docs) != 0 {
		t.Errorf("no chunks should be stored, got %d", len(store.docs))
	}
}

func TestChatGroundsPromptInRetrievedContext(t *testing.T) {
	store := &memStore{docs: []vectordb.Document{{
		ID:       "report.pdf#0",
		Content:  "Revenue grew twelve percent in Q3.",
		Metadata: vectordb.Metadata{Source: "report.pdf", Kind: "pdf_file"},
	}}}
	provider := &fakeProvider{fragments: []string{"Revenue ", "grew."}}
	rag := NewRAG(store, provider, testOptions())

	stream, err := rag.Chat(context.Background(), "How did revenue do?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	defer stream.Close()

	var full string
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		full += frag
	}
	if full != "Revenue grew." {
		t.Errorf("accumulated = %q", full)
	}

	req := provider.lastRequest
	if len(req.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != llm.RoleSystem || req.Messages[0].Content != "Answer from the documents only." {
		t.Errorf("system message = %+v", req.Messages[0])
	}
	user := req.Messages[1].Content
	if !strings.Contains(user, "Revenue grew twelve percent") {
		t.Errorf("user message missing retrieved context: %q", user)
	}
	if !strings.Contains(user, "How did revenue do?") {
		t.Errorf("user message missing question: %q", user)
	}
	if req.Model != "gpt-4o" || req.MaxTokens != 1000 {
		t.Errorf("request parameters not applied: %+v", req)
	}
}

func TestAskReturnsCompletion(t *testing.T) {
	store := &memStore{}
	provider := &fakeProvider{answer: "I don't have that information in the uploaded documents."}
	rag := NewRAG(store, provider, testOptions())

	answer, err := rag.Ask(context.Background(), "What is the weather?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != provider.answer {
		t.Errorf("answer = %q", answer)
	}
	if !strings.Contains(provider.lastRequest.Messages[1].Content, "No documents have been uploaded yet") {
		t.Errorf("empty-store prompt missing notice: %q", provider.lastRequest.Messages[1].Content)
	}
}

func TestFromConfigRequiresKey(t *testing.T) {
	if _, err := FromConfig(nil, ""); err == nil {
		t.Error("expected error for empty api key")
	}
}
