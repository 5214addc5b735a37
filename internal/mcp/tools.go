package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askDocumentsTool defines the ask_documents MCP tool.
var askDocumentsTool = mcp.NewTool("ask_documents",
	mcp.WithDescription("Ask a question answered strictly from the uploaded documents."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("Natural language question about the documents"),
	),
)

// searchDocumentsTool defines the search_documents MCP tool.
var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Search the uploaded documents semantically. Returns the most relevant chunks with their source file names."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of chunks to return (default 5)"),
	),
)

// listDocumentsTool defines the list_documents MCP tool.
var listDocumentsTool = mcp.NewTool("list_documents",
	mcp.WithDescription("List the file names currently in the knowledge base."),
)
