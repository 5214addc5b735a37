package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docgpt-ai/docgpt/internal/vectordb"
)

// handleAskDocuments answers a question grounded in the knowledge base.
func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	answer, err := s.rag.Ask(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	return mcp.NewToolResultText(answer), nil
}

// handleSearchDocuments performs semantic search over the document chunks.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	results, err := s.store.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No matching content. The knowledge base may be empty; add documents with `docgpt ingest`."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleListDocuments lists the file names recorded in the ledger.
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.ledger.Load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading ledger: %v", err)), nil
	}

	if len(names) == 0 {
		return mcp.NewToolResultText("No documents have been added to the knowledge base yet."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d document(s) in the knowledge base:\n", len(names))
	for _, name := range names {
		sb.WriteString("- ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults converts search results into a text format meant for
// AI agent consumption.
func formatSearchResults(results []vectordb.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n", len(results))

	for i, r := range results {
		fmt.Fprintf(&sb, "\n--- Result %d ---\n", i+1)
		fmt.Fprintf(&sb, "Source: %s (chunk %d)\n", r.Document.Metadata.Source, r.Document.Metadata.Chunk)
		fmt.Fprintf(&sb, "Similarity: %.1f%%\n", r.Similarity*100)
		sb.WriteString("\n")
		sb.WriteString(r.Document.Content)
		sb.WriteString("\n")
	}

	return sb.String()
}
