package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/docpolish/internal/detector"
	"github.com/harrison/docpolish/internal/model"
	"github.com/harrison/docpolish/internal/pipeline"
)

// NewDetectCommand creates and returns the detect subcommand
func NewDetectCommand() *cobra.Command {
	var (
		output     string
		strategy   string
		judgeModel string
		transcript string
	)

	cmd := &cobra.Command{
		Use:   "detect <test_results.json>",
		Short: "Detect ambiguities by comparing model interpretations",
		Long: `Compare the interpretations collected by the test step, section by
section. With the llm_judge strategy a separate model decides whether
the interpretations agree; a judge malfunction aborts detection instead
of producing made-up verdicts. The simple strategy compares keywords
and step counts locally.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			if strategy != "" {
				cfg.Detection.Strategy = strategy
			}
			if judgeModel != "" {
				cfg.Detection.JudgeModel = judgeModel
			}

			testResult, err := pipeline.LoadTestResult(args[0])
			if err != nil {
				return err
			}

			var sink detector.TranscriptSink = detector.NopSink{}
			if transcript != "" {
				fileSink, err := detector.NewFileTranscriptSink(transcript)
				if err != nil {
					return err
				}
				defer fileSink.Close()
				sink = fileSink
			}

			manager := model.NewManager(cfg.Models, nil, log)
			step := pipeline.NewDetectionStep(cfg.Detection, manager, sink, log)
			result, err := step.Run(testResult)
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
			if err := result.Save(output); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ambiguities found: %d\n", len(result.Ambiguities))
			if len(result.SeverityCounts) > 0 {
				var parts []string
				for _, sev := range []string{"critical", "high", "medium", "low"} {
					if n := result.SeverityCounts[sev]; n > 0 {
						parts = append(parts, fmt.Sprintf("%s: %d", sev, n))
					}
				}
				fmt.Fprintf(out, "Breakdown: %s\n", strings.Join(parts, ", "))
			}
			fmt.Fprintf(out, "Saved to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", pipeline.AmbiguitiesFile, "output file for detected ambiguities")
	cmd.Flags().StringVar(&strategy, "strategy", "", "detection strategy: llm_judge or simple (default: from config)")
	cmd.Flags().StringVar(&judgeModel, "judge", "", "judge model for llm_judge strategy (default: from config)")
	cmd.Flags().StringVar(&transcript, "transcript", "", "write judge transcripts to this JSONL file")

	return cmd
}
