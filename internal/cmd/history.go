package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/docpolish/internal/history"
)

// NewHistoryCommand creates and returns the history subcommand
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded polish runs",
	}

	cmd.AddCommand(newHistoryListCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	var (
		document string
		limit    int
	)

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List recent polish runs",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled in config")
			}

			store, err := history.NewStore(cfg.History.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), document, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, run := range runs {
				var counts []string
				for _, sev := range []string{"critical", "high", "medium", "low"} {
					if n := run.SeverityCounts[sev]; n > 0 {
						counts = append(counts, fmt.Sprintf("%s: %d", sev, n))
					}
				}
				breakdown := ""
				if len(counts) > 0 {
					breakdown = " (" + strings.Join(counts, ", ") + ")"
				}
				fmt.Fprintf(out, "%s  %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"), run.RunID)
				fmt.Fprintf(out, "  document: %s\n", run.DocumentPath)
				fmt.Fprintf(out, "  models: %s, strategy: %s\n", strings.Join(run.Models, ", "), run.Strategy)
				fmt.Fprintf(out, "  sections: %d, ambiguities: %d%s\n", run.SectionsTested, run.AmbiguitiesFound, breakdown)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&document, "document", "", "filter runs by document path")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")

	return cmd
}
