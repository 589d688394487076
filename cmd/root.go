package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hal",
	Short: "Academic advising chatbot with retrieval and confidence-based handoff",
	Long: `HAL answers engineering students' advising questions — courses,
prerequisites, advisors, deadlines, and policies — from an indexed
knowledge base. Every answer carries a confidence score; questions it
cannot answer confidently, and sensitive topics, are handed to a human
advisor instead of guessed at.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "hal.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
