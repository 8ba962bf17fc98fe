package main

import (
	"fmt"
	"os"

	"github.com/ahsanfayaz52/hopperhelps/internal/config"
	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logging.SlogLogger
)

var rootCmd = &cobra.Command{
	Use:   "hopperhelps",
	Short: "Mood journal service with Hopper the rabbit",
	Long: `HopperHelps stores daily journal notes, asks an AI model for a mood
analysis of each day and keeps a per-day mood summary in sync with the notes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		cfg = loaded
		logger = logging.New(os.Stderr, cfg.LogLevel)
		return nil
	},
}

// Execute runs the command line. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}
