package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/halbot/hal-advisor/internal/pipeline"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive advising chat in the terminal",
	Long:  `Opens a REPL against the full pipeline. Type /clear to reset the conversation and /quit to exit.`,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	sessionID := "repl-" + uuid.NewString()
	fmt.Println("HAL advising chat. /clear resets the conversation, /quit exits.")

	prompt := promptui.Prompt{Label: "you"}
	for {
		input, err := prompt.Run()
		if err != nil {
			// Ctrl-C / Ctrl-D end the session.
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		switch input {
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := pipe.ClearSession(ctx, sessionID); err != nil {
				fmt.Printf("could not clear session: %v\n", err)
				continue
			}
			fmt.Println("conversation cleared")
			continue
		case "":
			continue
		}

		result, err := pipe.HandleTurn(ctx, sessionID, input)
		if err != nil {
			if pipeline.IsContentError(err) {
				fmt.Println(err)
				continue
			}
			return err
		}

		fmt.Printf("\nhal> %s\n", result.Answer)
		if verbose {
			fmt.Printf("     [intent: %s, confidence: %.2f (%s), resolved: %q]\n",
				result.IntentLabel, result.ConfidenceScore, result.ConfidenceLevel, result.ResolvedQuery)
		}
		fmt.Println()
	}
}
