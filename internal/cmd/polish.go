package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/docpolish/internal/detector"
	"github.com/harrison/docpolish/internal/pipeline"
)

// NewPolishCommand creates and returns the polish subcommand
func NewPolishCommand() *cobra.Command {
	var modelNames []string

	cmd := &cobra.Command{
		Use:   "polish <document.md>",
		Short: "Run the full pipeline: extract, test, detect, report",
		Long: `Run every pipeline step against a document in one pass.

Sections are extracted, each enabled model interprets them, the
interpretations are compared, and a report plus a polished copy of the
document (with clarification markers) land in a fresh workspace
directory named after the run ID.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(cfg, log)
			result, err := runner.Run(cmd.Context(), args[0], modelNames)
			if err != nil {
				var judgeErr *detector.JudgeFailureError
				if errors.As(err, &judgeErr) {
					out := cmd.OutOrStdout()
					color.New(color.FgRed, color.Bold).Fprintln(out, "Judge comparison failed!")
					fmt.Fprintf(out, "Section: %s\n", judgeErr.SectionID)
					fmt.Fprintf(out, "Reason: %s\n", judgeErr.Reason)
					if judgeErr.Details != "" {
						fmt.Fprintf(out, "Details: %s\n", judgeErr.Details)
					}
				}
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen, color.Bold).Fprintln(out, "Polish complete!")
			fmt.Fprintf(out, "Run ID: %s\n", result.RunID)
			fmt.Fprintf(out, "Sections tested: %d\n", result.SectionsTested)
			fmt.Fprintf(out, "Ambiguities found: %d\n", result.AmbiguitiesFound)
			if len(result.SeverityCounts) > 0 {
				var parts []string
				for _, sev := range []string{"critical", "high", "medium", "low"} {
					if n := result.SeverityCounts[sev]; n > 0 {
						parts = append(parts, fmt.Sprintf("%s: %d", sev, n))
					}
				}
				fmt.Fprintf(out, "Breakdown: %s\n", strings.Join(parts, ", "))
			}
			fmt.Fprintf(out, "Report: %s\n", result.ReportPath)
			if result.PolishedPath != "" {
				fmt.Fprintf(out, "Polished document: %s\n", result.PolishedPath)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&modelNames, "models", nil, "models to test with (default: all enabled)")

	return cmd
}
