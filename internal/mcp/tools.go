package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askAdvisorTool defines the ask_advisor MCP tool.
var askAdvisorTool = mcp.NewTool("ask_advisor",
	mcp.WithDescription("Ask the academic advising assistant a question. Runs the full pipeline: intent classification, retrieval, confidence scoring, and handoff rules. Low-confidence or sensitive questions return a referral to a human advisor instead of an answer."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The advising question, e.g. \"What are the prerequisites for CMPE 131?\""),
	),
	mcp.WithString("session_id",
		mcp.Description("Session identifier for follow-up questions; omit to start a fresh conversation"),
	),
)

// searchKnowledgeTool defines the search_knowledge MCP tool.
var searchKnowledgeTool = mcp.NewTool("search_knowledge",
	mcp.WithDescription("Search the advising knowledge base semantically. Returns matching course, advisor, policy, and deadline records with similarity scores."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
	mcp.WithString("source_filter",
		mcp.Description("Restrict results to one record type"),
		mcp.Enum("course", "advisor", "policy", "deadline"),
	),
)
