// Package engine implements the retrieval-augmented chat engine: document
// ingestion into the vector store and streamed, context-grounded answers.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/docgpt-ai/docgpt/internal/config"
	"github.com/docgpt-ai/docgpt/internal/embeddings"
	"github.com/docgpt-ai/docgpt/internal/extract"
	"github.com/docgpt-ai/docgpt/internal/llm"
	"github.com/docgpt-ai/docgpt/internal/vectordb"
)

// Engine is the capability surface the ingestion and chat workflows use.
type Engine interface {
	// Add ingests the file at path into the knowledge base.
	Add(ctx context.Context, path string, kind extract.Kind) error
	// Chat answers the query grounded in the knowledge base, streaming
	// response fragments.
	Chat(ctx context.Context, query string) (llm.Stream, error)
}

// Options carries the model and retrieval parameters for a RAG engine.
type Options struct {
	Model          string
	Temperature    float64
	TopP           float64
	MaxTokens      int
	SystemPrompt   string
	ChunkSize      int
	ChunkOverlap   int
	RetrievalLimit int
}

// RAG is the concrete engine over a vector store and an LLM provider.
type RAG struct {
	store    vectordb.VectorStore
	provider llm.Provider
	splitter textsplitter.TextSplitter
	opts     Options
}

// NewRAG creates an engine over the given store and provider.
func NewRAG(store vectordb.VectorStore, provider llm.Provider, opts Options) *RAG {
	return &RAG{
		store:    store,
		provider: provider,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(opts.ChunkSize),
			textsplitter.WithChunkOverlap(opts.ChunkOverlap),
		),
		opts: opts,
	}
}

// FromConfig builds a fully wired RAG engine: OpenAI embeddings, a
// persistent chromem store under the knowledge base directory, and an
// OpenAI chat provider bound to the given credential.
func FromConfig(cfg *config.Config, apiKey string) (*RAG, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	embedder := embeddings.NewOpenAIEmbedder(apiKey, cfg.EmbeddingModel)
	store, err := vectordb.NewChromemStore(cfg.KnowledgeBase, cfg.Collection, embedder)
	if err != nil {
		return nil, err
	}

	provider := llm.NewOpenAIProvider(apiKey, cfg.Model)

	return NewRAG(store, provider, Options{
		Model:          cfg.Model,
		Temperature:    cfg.Temperature,
		TopP:           cfg.TopP,
		MaxTokens:      cfg.MaxTokens,
		SystemPrompt:   cfg.SystemPrompt,
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		RetrievalLimit: cfg.RetrievalLimit,
	}), nil
}

// Store exposes the underlying vector store for search tooling.
func (r *RAG) Store() vectordb.VectorStore { return r.store }

func (r *RAG) Add(ctx context.Context, path string, kind extract.Kind) error {
	chunks, err := extract.Chunks(ctx, path, kind, r.splitter)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no text extracted from %s", filepath.Base(path))
	}

	source := filepath.Base(path)
	docs := make([]vectordb.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = vectordb.Document{
			ID:      fmt.Sprintf("%s#%d", source, i),
			Content: chunk.PageContent,
			Metadata: vectordb.Metadata{
				Source: source,
				Kind:   string(kind),
				Chunk:  i,
			},
		}
	}

	if err := r.store.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("storing %d chunks: %w", len(docs), err)
	}
	return nil
}

func (r *RAG) Chat(ctx context.Context, query string) (llm.Stream, error) {
	messages, err := r.buildMessages(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.provider.Stream(ctx, r.completionRequest(messages))
}

// Ask is the non-streaming variant of Chat, used by the MCP tools.
func (r *RAG) Ask(ctx context.Context, query string) (string, error) {
	messages, err := r.buildMessages(ctx, query)
	if err != nil {
		return "", err
	}
	resp, err := r.provider.Complete(ctx, r.completionRequest(messages))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (r *RAG) completionRequest(messages []llm.Message) llm.CompletionRequest {
	return llm.CompletionRequest{
		Model:       r.opts.Model,
		Messages:    messages,
		MaxTokens:   r.opts.MaxTokens,
		Temperature: r.opts.Temperature,
		TopP:        r.opts.TopP,
	}
}

func (r *RAG) buildMessages(ctx context.Context, query string) ([]llm.Message, error) {
	results, err := r.store.Search(ctx, query, r.opts.RetrievalLimit)
	if err != nil {
		return nil, fmt.Errorf("searching knowledge base: %w", err)
	}

	var b strings.Builder
	if len(results) > 0 {
		b.WriteString("Context from the uploaded documents:\n\n")
		for _, res := range results {
			fmt.Fprintf(&b, "[%s]\n%s\n\n", res.Document.Metadata.Source, res.Document.Content)
		}
	} else {
		b.WriteString("No documents have been uploaded yet.\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(query)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: r.opts.SystemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}, nil
}
