package vectordb

import "context"

// VectorStore defines the interface for storing and searching document
// chunks by embeddings.
type VectorStore interface {
	// AddDocuments adds or updates documents in the store.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search performs a semantic search using the query text.
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// Count returns the total number of documents in the store.
	Count() int
}

// Document represents one retrievable chunk of an ingested file.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Metadata holds structured information about a chunk.
type Metadata struct {
	Source string // original file name the chunk came from
	Kind   string // document kind tag used at ingestion
	Chunk  int    // zero-based chunk index within the source
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}
