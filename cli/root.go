// Package cli holds the clipbot commands.
package cli

import (
	"fmt"

	"clipbot/config"
	"clipbot/logger"

	"github.com/spf13/cobra"
)

var (
	// configPath is the settings file shared by every command
	configPath string
	// logMode selects the zap preset: dev or prod
	logMode string

	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "clipbot",
	Short: "Turns topics and news into narrated stock-footage videos",
	Long: `clipbot writes a script for a topic, narrates it, illustrates every
sentence with stock media, optionally asks a Telegram chat to review the
selection, renders the result with ffmpeg and uploads it to YouTube.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			configPath = config.GetEnvOrDefault("CLIPBOT_CONFIG", "config.yaml")
		}
		if logMode == "" {
			logMode = config.GetEnvOrDefault("LOG_MODE", "dev")
		}
		l, err := logger.New(logMode)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

// Execute runs the command named on the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Settings file, YAML or JSON (default $CLIPBOT_CONFIG or config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logMode, "log-mode", "l", "",
		"Log output: dev or prod (default $LOG_MODE or dev)")
}
