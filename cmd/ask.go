package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single advising question from the command line",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the full turn result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")

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

	result, err := pipe.HandleTurn(ctx, "cli-"+uuid.NewString(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println(result.Answer)
	fmt.Printf("\n[intent: %s, confidence: %.2f (%s)", result.IntentLabel, result.ConfidenceScore, result.ConfidenceLevel)
	if result.Escalate {
		fmt.Printf(", escalated: %s", result.Reason)
	}
	fmt.Println("]")
	return nil
}
