package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"entraops/capolicy/pkg/cli"
	"entraops/capolicy/pkg/history"
)

var historyFlags struct {
	limit int
	runID string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past deployment runs",
	Long: `History lists recorded deployment runs, newest first.

With --run, shows the per-template outcomes of one run instead.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "number of runs to show")
	historyCmd.Flags().StringVar(&historyFlags.runID, "run", "", "show the results of one run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return cli.NewConfigError("history.enabled", "run history is disabled")
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	if historyFlags.runID != "" {
		results, err := store.ListResults(ctx, historyFlags.runID)
		if err != nil {
			return cli.NewCommandError("history", err)
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tFILE\tACTION\tPOLICY\tERROR")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Sequence, r.TemplateFile, r.Action, r.PolicyID, r.Error)
		}
		return tw.Flush()
	}

	runs, err := store.ListRuns(ctx, historyFlags.limit)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tPREFIX\tMODE\tCREATED\tUPDATED\tSKIPPED\tFAILED")
	for _, r := range runs {
		mode := "apply"
		if r.DryRun {
			mode = "dry-run"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Prefix, mode,
			r.Summary.Created, r.Summary.Updated, r.Summary.Skipped, r.Summary.Failed)
	}
	return tw.Flush()
}
