package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/halbot/hal-advisor/internal/vectordb"
)

// handleAskAdvisor runs a question through the full pipeline.
func (s *Server) handleAskAdvisor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		sessionID = "mcp-" + uuid.NewString()
	}

	result, err := s.pipe.HandleTurn(ctx, sessionID, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("turn failed: %v", err)), nil
	}

	var b strings.Builder
	b.WriteString(result.Answer)
	fmt.Fprintf(&b, "\n\n---\nsession_id: %s\nintent: %s\nconfidence: %.2f (%s)",
		sessionID, result.IntentLabel, result.ConfidenceScore, result.ConfidenceLevel)
	if result.Escalate {
		fmt.Fprintf(&b, "\nescalated: %s", result.Reason)
	}

	return mcp.NewToolResultText(b.String()), nil
}

// handleSearchKnowledge performs semantic search over the knowledge base.
func (s *Server) handleSearchKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	var filter *vectordb.SearchFilter
	if sourceStr := request.GetString("source_filter", ""); sourceStr != "" {
		source := vectordb.SourceType(sourceStr)
		filter = &vectordb.SearchFilter{Source: &source}
	}

	results, err := s.store.Search(ctx, query, limit, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No results found. The knowledge base may not be indexed yet. Run `hal index` to index it."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// formatSearchResults renders results as readable text for the MCP client.
func formatSearchResults(results []vectordb.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "## %d. %s (%s, similarity %.2f)\n", i+1, r.Document.Metadata.Name, r.Document.Metadata.Source, r.Similarity)
		b.WriteString(r.Document.Content)
		if r.Document.Metadata.URL != "" {
			fmt.Fprintf(&b, "\nSource: %s", r.Document.Metadata.URL)
		}
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}
