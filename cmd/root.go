package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"safenest/config"
	"safenest/internal/logger"
)

var (
	flagConfig   string
	flagLogLevel string

	cfg *config.Config
)

// rootCmd базовая команда CLI
var rootCmd = &cobra.Command{
	Use:           "safenest",
	Short:         "Inspect housing property photos",
	Long:          "SafeNest detects defects on property photos, checks them against building codes and builds a risk and cost report.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			loaded.Log.Level = flagLogLevel
		}
		logger.SetOutput(cmd.ErrOrStderr(), loaded.Log.Level, loaded.Log.Format)
		cfg = loaded
		return nil
	},
}

// Execute запускает CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")
}
