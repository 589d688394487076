// Package mcp exposes the advising pipeline to MCP clients over stdio, so
// editor assistants can query the same knowledge base the chatbot uses.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/halbot/hal-advisor/internal/pipeline"
	"github.com/halbot/hal-advisor/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes advising tools.
type Server struct {
	pipe  *pipeline.Pipeline
	store vectordb.VectorStore
	mcp   *server.MCPServer
}

// NewServer creates an MCP server backed by the pipeline and vector store.
func NewServer(pipe *pipeline.Pipeline, store vectordb.VectorStore) *Server {
	s := &Server{
		pipe:  pipe,
		store: store,
	}

	s.mcp = server.NewMCPServer(
		"hal-advisor",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers.
func (s *Server) registerTools() {
	s.mcp.AddTool(askAdvisorTool, s.handleAskAdvisor)
	s.mcp.AddTool(searchKnowledgeTool, s.handleSearchKnowledge)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
