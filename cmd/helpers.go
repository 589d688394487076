package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/halbot/hal-advisor/internal/answer"
	"github.com/halbot/hal-advisor/internal/confidence"
	"github.com/halbot/hal-advisor/internal/config"
	"github.com/halbot/hal-advisor/internal/db"
	"github.com/halbot/hal-advisor/internal/embeddings"
	"github.com/halbot/hal-advisor/internal/handoff"
	"github.com/halbot/hal-advisor/internal/intent"
	"github.com/halbot/hal-advisor/internal/llm"
	"github.com/halbot/hal-advisor/internal/pipeline"
	"github.com/halbot/hal-advisor/internal/resolver"
	"github.com/halbot/hal-advisor/internal/retrieval"
	"github.com/halbot/hal-advisor/internal/session"
	"github.com/halbot/hal-advisor/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `hal init` to create a config file", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, ""), nil
	default:
		// Anthropic has no embeddings API; fall back to OpenAI.
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required (used for embeddings when provider is %s)", provider)
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.ModelTextEmbedding3Small), nil
	}
}

// openVectorStore creates the chromem store and loads the persisted index
// from the data directory if one exists.
func openVectorStore(ctx context.Context, cfg *config.Config) (vectordb.VectorStore, error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	vectorDir := filepath.Join(cfg.DataDir, "vectordb")
	if err := store.Load(ctx, vectorDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load vector store from %s: %v\n", vectorDir, err)
		fmt.Fprintf(os.Stderr, "Answers will escalate until you run `hal seed` and `hal index`.\n")
	}
	return store, nil
}

// openDatabase opens the SQLite database under the data directory.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	return db.Open(filepath.Join(cfg.DataDir, "hal.db"))
}

// buildPipeline assembles the full turn pipeline from config. Shared by
// ask, chat, serve, and mcp.
func buildPipeline(cfg *config.Config, database *db.DB, store vectordb.VectorStore) (*pipeline.Pipeline, error) {
	generator, err := llm.NewProvider(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating generation provider: %w", err)
	}
	classifier, err := llm.NewProvider(cfg.Provider, cfg.ClassifierModel)
	if err != nil {
		return nil, fmt.Errorf("creating classifier provider: %w", err)
	}

	scorer, err := confidence.NewScorer(cfg.Confidence, cfg.Retrieval.TopK)
	if err != nil {
		return nil, fmt.Errorf("configuring confidence scorer: %w", err)
	}

	sessions := session.NewManager(
		session.NewStore(database),
		cfg.Session.HistoryWindow,
		time.Duration(cfg.Session.TimeoutMinutes)*time.Minute,
	)

	return pipeline.New(
		intent.NewClassifier(classifier, cfg.ClassifierModel, cfg.Handoff.HumanRequestPhrases),
		resolver.New(),
		retrieval.NewRanker(store, cfg.Retrieval),
		scorer,
		handoff.NewDecider(cfg.Handoff, cfg.Confidence),
		answer.NewGenerator(generator, cfg.Model),
		sessions,
		cfg.Session.MaxMessageLen,
	), nil
}
