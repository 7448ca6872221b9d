package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/docpolish/internal/pipeline"
)

// NewExtractCommand creates and returns the extract subcommand
func NewExtractCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract <document.md>",
		Short: "Extract testable sections from a markdown document",
		Long: `Split a markdown document at its headings and keep the sections that
contain instructional content. Headings inside code fences do not split
sections. The result is written as JSON for the test step.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.ExtractStep(args[0])
			if err != nil {
				return err
			}
			if err := result.Save(output); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Extracted %d testable sections from %s\n", len(result.Sections), args[0])
			for _, line := range result.Summary {
				fmt.Fprintf(out, "  %s\n", line)
			}
			fmt.Fprintf(out, "Saved to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", pipeline.SectionsFile, "output file for extracted sections")

	return cmd
}
