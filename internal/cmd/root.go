// Package cmd wires the docpolish CLI.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for docpolish
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docpolish",
		Short: "Documentation ambiguity testing via multiple AI models",
		Long: `Docpolish tests documentation for clarity by asking several AI CLI
tools (claude, gemini, codex) to interpret each section independently,
then comparing their interpretations.

Where the models disagree, or agree while flagging the same uncertainty,
the section is ambiguous and gets reported with a severity rating.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "path to config.yaml (default: .docpolish/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")

	cmd.AddCommand(NewPolishCommand())
	cmd.AddCommand(NewExtractCommand())
	cmd.AddCommand(NewSessionsCommand())
	cmd.AddCommand(NewTestCommand())
	cmd.AddCommand(NewDetectCommand())
	cmd.AddCommand(NewReportCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

// loadSetup resolves config and logger from the command's flags.
func loadSetup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	log := logger.NewConsoleLogger(os.Stderr, level)

	return cfg, log, nil
}
