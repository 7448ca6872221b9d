package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/docpolish/internal/parser"
	"github.com/harrison/docpolish/internal/pipeline"
	"github.com/harrison/docpolish/internal/session"
)

// NewSessionsCommand creates and returns the sessions subcommand
func NewSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage document-context sessions",
	}

	cmd.AddCommand(newSessionsInitCommand())
	cmd.AddCommand(newSessionsListCommand())

	return cmd
}

func newSessionsInitCommand() *cobra.Command {
	var (
		modelNames []string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "init <document.md>",
		Short: "Seed each model with the full document",
		Long: `Create a session per model and feed it the whole document, so later
section queries can rely on full-document context instead of resending
the document every time. Session IDs are saved for the test step.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			if !cfg.Sessions.Enabled {
				return fmt.Errorf("sessions are disabled in config")
			}

			doc, err := parser.LoadDocument(args[0])
			if err != nil {
				return err
			}

			names := cfg.EnabledModels(modelNames)
			if len(names) == 0 {
				return fmt.Errorf("no enabled models to initialize")
			}

			sessions := session.NewManager(cfg.Models, cfg.Sessions, log)
			meta := pipeline.SessionInitStep(sessions, cfg.Sessions, names, doc.Content())
			if err := meta.Save(output); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				if id, ok := meta.SessionIDs[name]; ok {
					fmt.Fprintf(out, "%s: session %s\n", name, id)
				} else {
					fmt.Fprintf(out, "%s: failed\n", name)
				}
			}
			if len(meta.FailedModels) > 0 {
				fmt.Fprintf(out, "Failed models: %s\n", strings.Join(meta.FailedModels, ", "))
			}
			fmt.Fprintf(out, "Saved to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&modelNames, "models", nil, "models to initialize (default: all enabled)")
	cmd.Flags().StringVarP(&output, "output", "o", pipeline.SessionMetadataFile, "output file for session metadata")

	return cmd
}

func newSessionsListCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "Show saved session metadata",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := pipeline.LoadSessionMetadata(input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !meta.Enabled {
				fmt.Fprintln(out, "Sessions disabled.")
				return nil
			}

			names := make([]string, 0, len(meta.SessionIDs))
			for name := range meta.SessionIDs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%s: %s\n", name, meta.SessionIDs[name])
			}
			if len(meta.FailedModels) > 0 {
				fmt.Fprintf(out, "Failed models: %s\n", strings.Join(meta.FailedModels, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", pipeline.SessionMetadataFile, "session metadata file")

	return cmd
}
