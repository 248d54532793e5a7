package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/codequery/internal/engine"
)

// Server wraps the MCP server with its engine dependency.
type Server struct {
	server *mcp.Server
	engine *engine.Engine
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(eng *engine.Engine) *Server {
	impl := &mcp.Implementation{
		Name:    "codequery-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "load_repository",
		Description: "Clone-free load and index of a repository (GitHub URL or local path). Replaces any previously loaded index.",
	}, makeLoadHandler(eng))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_codebase",
		Description: "Ask a natural-language question about the loaded repository. Returns an answer with the code chunks it was grounded on.",
	}, makeAskHandler(eng))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_code",
		Description: "Semantic search over the loaded repository's code chunks. Returns ranked chunks without calling the language model.",
	}, makeSearchHandler(eng))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report whether a repository is loaded, and its file and chunk counts.",
	}, makeStatusHandler(eng))

	return &Server{
		server: server,
		engine: eng,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
