package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"nexsort/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past organizer runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					humanize.Time(run.StartedAt),
					run.Root,
					runOptions(run),
					strconv.Itoa(run.Moved),
					strconv.Itoa(run.Duplicates),
					strconv.Itoa(run.Failed),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{title: "Run"},
				{title: "Started"},
				{title: "Root"},
				{title: "Options"},
				{title: "Moved", numeric: true},
				{title: "Dup", numeric: true},
				{title: "Failed", numeric: true},
			}, rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-file decisions of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runID, err := resolveRunID(cmd, store, args[0])
			if err != nil {
				return err
			}
			run, err := store.GetRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			decisions, err := store.Decisions(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, struct {
					Run       history.Run        `json:"run"`
					Decisions []history.Decision `json:"decisions"`
				}{run, decisions})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s  root=%s  started=%s  options=%s\n",
				run.ID, run.Root, run.StartedAt.Local().Format("2006-01-02 15:04:05"), runOptions(run))
			fmt.Fprintf(out, "Moved %d, duplicates %d, failed %d\n\n", run.Moved, run.Duplicates, run.Failed)

			rows := make([][]string, 0, len(decisions))
			for _, d := range decisions {
				detail := d.TargetPath
				if detail == "" {
					detail = d.Detail
				}
				rows = append(rows, []string{string(d.Action), d.SourcePath, detail})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "Action"},
				{title: "Source"},
				{title: "Target / Detail"},
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run as JSON")
	return cmd
}

// resolveRunID accepts either a full run UUID or an unambiguous prefix.
func resolveRunID(cmd *cobra.Command, store *history.Store, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if len(arg) >= 36 {
		return arg, nil
	}
	runs, err := store.ListRuns(cmd.Context(), 1000)
	if err != nil {
		return "", err
	}
	var match string
	for _, run := range runs {
		if strings.HasPrefix(run.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("run id prefix %q is ambiguous", arg)
			}
			match = run.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no run matches %q", arg)
	}
	return match, nil
}

func runOptions(run history.Run) string {
	var parts []string
	if run.ByDate {
		parts = append(parts, "by-date")
	}
	if run.BySize {
		parts = append(parts, "by-size")
	}
	if run.DryRun {
		parts = append(parts, "dry-run")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
