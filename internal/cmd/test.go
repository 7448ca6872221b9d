package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/docpolish/internal/model"
	"github.com/harrison/docpolish/internal/pipeline"
	"github.com/harrison/docpolish/internal/session"
)

// NewTestCommand creates and returns the test subcommand
func NewTestCommand() *cobra.Command {
	var (
		modelNames []string
		output     string
		noSessions bool
	)

	cmd := &cobra.Command{
		Use:   "test <sections.json>",
		Short: "Ask every model to interpret each extracted section",
		Long: `Send each section's interpretation prompt to every model and record
the responses. A model failure for one section is recorded as an error
response in the results rather than aborting the run.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			extraction, err := pipeline.LoadExtractionResult(args[0])
			if err != nil {
				return err
			}

			names := cfg.EnabledModels(modelNames)
			if len(names) == 0 {
				return fmt.Errorf("no enabled models to test with")
			}

			useSessions := cfg.Sessions.Enabled && !noSessions
			sessions := session.NewManager(cfg.Models, cfg.Sessions, log)
			if useSessions {
				pipeline.SessionInitStep(sessions, cfg.Sessions, names, extraction.DocumentContent)
				defer sessions.CleanupSessions()
			}

			manager := model.NewManager(cfg.Models, sessions, log)
			step := pipeline.NewTestingStep(manager, log)
			result, err := step.Run(extraction.Sections, names, useSessions)
			if err != nil {
				return err
			}
			result.DocumentPath = extraction.DocumentPath
			if err := result.Save(output); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tested %d sections with %d models\n", result.SectionsTested, len(names))
			fmt.Fprintf(out, "Saved to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&modelNames, "models", nil, "models to test with (default: all enabled)")
	cmd.Flags().StringVarP(&output, "output", "o", pipeline.TestResultsFile, "output file for test results")
	cmd.Flags().BoolVar(&noSessions, "no-sessions", false, "query statelessly even when sessions are enabled")

	return cmd
}
