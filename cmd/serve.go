package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/halbot/hal-advisor/internal/analytics"
	"github.com/halbot/hal-advisor/internal/knowledge"
	"github.com/halbot/hal-advisor/internal/llm"
	"github.com/halbot/hal-advisor/internal/quickreplies"
	"github.com/halbot/hal-advisor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long:  `Starts the advising API: chat, quick replies, feedback, WebSocket transport, and the knowledge-base admin endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "override the configured port")
	serveCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Port = port
	}
	allowAll, _ := cmd.Flags().GetBool("allow-all-origins")

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

	// Quick replies use the fast classifier model; degrade to canned
	// defaults if the provider cannot be built.
	var suggester *quickreplies.Suggester
	if provider, err := llm.NewProvider(cfg.Provider, cfg.ClassifierModel); err == nil {
		suggester = quickreplies.NewSuggester(provider, cfg.ClassifierModel)
	} else {
		suggester = quickreplies.NewSuggester(nil, "")
	}

	srv := server.New(
		server.Config{Port: cfg.Port, AllowAll: allowAll},
		pipe,
		suggester,
		knowledge.NewStore(database),
		analytics.NewStore(database),
	)

	// Graceful shutdown on SIGINT/SIGTERM.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-done
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	return srv.Start()
}
