// Package mcp exposes the knowledge base to MCP clients over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/docgpt-ai/docgpt/internal/ledger"
	"github.com/docgpt-ai/docgpt/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Asker answers a question grounded in the knowledge base.
type Asker interface {
	Ask(ctx context.Context, query string) (string, error)
}

// Server wraps an MCP server that exposes document question-answering and
// search tools.
type Server struct {
	rag    Asker
	store  vectordb.VectorStore
	ledger *ledger.Ledger
	mcp    *server.MCPServer
}

// NewServer creates an MCP server over the given engine, store and ledger.
func NewServer(rag Asker, store vectordb.VectorStore, l *ledger.Ledger) *Server {
	s := &Server{
		rag:    rag,
		store:  store,
		ledger: l,
	}

	s.mcp = server.NewMCPServer(
		"docgpt",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askDocumentsTool, s.handleAskDocuments)
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
