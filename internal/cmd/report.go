package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/docpolish/internal/filelock"
	"github.com/harrison/docpolish/internal/pipeline"
	"github.com/harrison/docpolish/internal/report"
)

// NewReportCommand creates and returns the report subcommand
func NewReportCommand() *cobra.Command {
	var (
		output   string
		polished string
	)

	cmd := &cobra.Command{
		Use:   "report <test_results.json> <ambiguities.json>",
		Short: "Render a markdown report from detection results",
		Long: `Generate the polish report from saved test results and detected
ambiguities. With --polished, also write a copy of the original
document annotated with clarification markers after each ambiguous
section.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			testResult, err := pipeline.LoadTestResult(args[0])
			if err != nil {
				return err
			}
			detection, err := pipeline.LoadDetectionOutput(args[1])
			if err != nil {
				return err
			}

			content := report.Generate(report.Params{
				DocumentPath: testResult.DocumentPath,
				JudgeModel:   detection.JudgeModel,
				ModelNames:   testResult.ModelNames,
			}, len(testResult.Sections), detection.Ambiguities)

			if err := filelock.AtomicWrite(output, []byte(content)); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Report saved to: %s\n", output)

			if polished != "" {
				extraction, err := pipeline.LoadExtractionResult(polished)
				if err != nil {
					return err
				}
				polishedContent := report.Polished(extraction.DocumentContent, detection.Ambiguities)
				polishedPath := output + ".polished.md"
				if err := filelock.AtomicWrite(polishedPath, []byte(polishedContent)); err != nil {
					return err
				}
				fmt.Fprintf(out, "Polished document saved to: %s\n", polishedPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", pipeline.ReportFile, "output file for the report")
	cmd.Flags().StringVar(&polished, "polished", "", "sections.json to build a polished document from")

	return cmd
}
