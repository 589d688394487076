package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/halbot/hal-advisor/internal/knowledge"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the vector index from the knowledge base",
	Long:  `Embeds every course, advisor, policy, and deadline record and rebuilds the vector index used for retrieval. Run after seeding or editing the knowledge base.`,
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
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

	indexer := knowledge.NewIndexer(knowledge.NewStore(database), store)

	docs, err := indexer.CollectDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("knowledge base is empty; run `hal seed` or add records via the admin API first")
	}

	bar := progressbar.NewOptions(len(docs),
		progressbar.OptionSetDescription("Indexing knowledge base"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	n, err := indexer.IndexAll(ctx, func() { bar.Add(1) })
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	vectorDir := filepath.Join(cfg.DataDir, "vectordb")
	if err := store.Persist(ctx, vectorDir); err != nil {
		return fmt.Errorf("persisting vector index: %w", err)
	}

	fmt.Printf("Indexed %d documents into %s\n", n, vectorDir)
	return nil
}
