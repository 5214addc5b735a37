package vectordb

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/docgpt-ai/docgpt/internal/embeddings"
)

// ChromemStore implements VectorStore using chromem-go with on-disk
// persistence, so the vector index survives restarts alongside the ledger.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore opens (or creates) a persistent chromem DB in the given
// directory and binds the named collection to the embedder.
func NewChromemStore(dir, collection string, embedder embeddings.Embedder) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector store in %s: %w", dir, err)
	}

	col, err := db.GetOrCreateCollection(collection, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("creating collection %q: %w", collection, err)
	}

	return &ChromemStore{db: db, collection: col}, nil
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:      doc.ID,
			Content: doc.Content,
			Metadata: map[string]string{
				"source": doc.Metadata.Source,
				"kind":   doc.Metadata.Kind,
				"chunk":  strconv.Itoa(doc.Metadata.Chunk),
			},
		}
	}

	return s.collection.AddDocuments(ctx, chromDocs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		chunk, _ := strconv.Atoi(r.Metadata["chunk"])
		searchResults[i] = SearchResult{
			Document: Document{
				ID:      r.ID,
				Content: r.Content,
				Metadata: Metadata{
					Source: r.Metadata["source"],
					Kind:   r.Metadata["kind"],
					Chunk:  chunk,
				},
			},
			Similarity: r.Similarity,
		}
	}

	return searchResults, nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}
