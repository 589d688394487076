package cmd

import (
	"github.com/spf13/cobra"

	"github.com/halbot/hal-advisor/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize hal configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose an LLM provider and data directory, then writes hal.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard()
		if err != nil {
			return err
		}
		return cfg.Save(cfgFile)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
