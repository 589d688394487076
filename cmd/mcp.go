package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/halbot/hal-advisor/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the ask_advisor and search_knowledge tools to AI agents.`,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store, err := openVectorStore(ctx, cfg)
	if err != nil {
		return err
	}

	pipe, err := buildPipeline(cfg, database, store)
	if err != nil {
		return err
	}

	// Stdout carries MCP protocol messages; status goes to stderr.
	mcpserver.Version = Version
	fmt.Fprintf(os.Stderr, "hal MCP server started on stdio (documents=%d)\n", store.Count())

	return mcpserver.NewServer(pipe, store).Serve()
}
