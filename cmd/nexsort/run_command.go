package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"nexsort/internal/logging"
	"nexsort/internal/organizer"
	"nexsort/internal/plan"
	"nexsort/internal/tree"
)

type runFlags struct {
	byDate     bool
	bySize     bool
	maxAgeDays float64
	dryRun     bool
	categories string
	jsonOut    bool
	noHistory  bool
	noTree     bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <directory>",
		Short: "Organize a directory into category folders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(ctx, cmd, args[0], flags, false)
		},
	}
	addRunFlags(cmd, &flags)
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Plan and report without moving anything")
	return cmd
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "preview <directory>",
		Short: "Show what a run would do without moving anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(ctx, cmd, args[0], flags, true)
		},
	}
	addRunFlags(cmd, &flags)
	return cmd
}

func addRunFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().BoolVar(&flags.byDate, "by-date", false, "Insert a YYYY-MM segment under the category")
	cmd.Flags().BoolVar(&flags.bySize, "by-size", false, "Insert a Small/Medium/Large segment under the category")
	cmd.Flags().Float64Var(&flags.maxAgeDays, "max-age", 0, "Skip files modified more than this many days ago (0 disables)")
	cmd.Flags().StringVar(&flags.categories, "categories", "", "JSON category mapping file (overrides config)")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Emit the result as JSON")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Skip recording this run in the history ledger")
	cmd.Flags().BoolVar(&flags.noTree, "no-tree", false, "Skip printing the layout tree")
}

func executeRun(ctx *commandContext, cmd *cobra.Command, dir string, flags runFlags, forceDryRun bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.newLogger()
	if err != nil {
		return err
	}

	mapping, warn, err := ctx.loadMapping(flags.categories)
	if err != nil {
		return err
	}
	if warn != nil {
		logger.Warn("falling back to built-in categories", logging.Error(warn))
	}

	opts := organizer.Options{
		Layout: plan.Options{
			ByDate:     flags.byDate || cfg.Sorting.ByDate,
			BySize:     flags.bySize || cfg.Sorting.BySize,
			MaxAgeDays: flags.maxAgeDays,
		},
		DryRun:         forceDryRun || flags.dryRun || cfg.Organizer.DryRun,
		PruneEmptyDirs: cfg.Organizer.PruneEmptyDirs,
	}
	// An explicit --max-age, including 0, beats the configured cutoff.
	if !cmd.Flags().Changed("max-age") {
		opts.Layout.MaxAgeDays = cfg.Sorting.MaxAgeDays
	}

	org := organizer.New(dir, mapping, opts, logger)
	if !flags.noHistory && !opts.DryRun {
		if ledger := ctx.openLedger(logger); ledger != nil {
			defer ledger.Close()
			org.WithLedger(ledger)
		}
	}

	if !flags.jsonOut && !flags.noTree {
		if before, snapErr := tree.Snapshot(dir); snapErr == nil && before.Len() > 0 {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Current layout:")
			fmt.Fprintln(out, before.Render())
			fmt.Fprintln(out)
		}
	}

	bar := newRunProgress(cmd, flags.jsonOut)
	if bar != nil {
		org.WithProgress(bar.update)
	}

	result, err := org.Run(cmd.Context())
	if bar != nil {
		bar.stop()
	}
	if err != nil {
		return err
	}

	if flags.jsonOut {
		return writeJSON(cmd, runReport(dir, opts, result))
	}
	printRunResult(cmd, opts, result, flags.noTree)
	return nil
}

type report struct {
	Root       string              `json:"root"`
	DryRun     bool                `json:"dryRun"`
	RunID      string              `json:"runId,omitempty"`
	Summary    organizer.Summary   `json:"summary"`
	BytesMoved int64               `json:"bytesMoved"`
	Failures   []organizer.Failure `json:"failures,omitempty"`
	Tree       []string            `json:"tree"`
	PrunedDirs []string            `json:"prunedDirs,omitempty"`
}

func runReport(root string, opts organizer.Options, result *organizer.Result) report {
	var lines []string
	for line := range result.Tree.Lines() {
		lines = append(lines, line)
	}
	return report{
		Root:       root,
		DryRun:     opts.DryRun,
		RunID:      result.RunID,
		Summary:    result.Summary,
		BytesMoved: result.BytesMoved,
		Failures:   result.Failures,
		Tree:       lines,
		PrunedDirs: result.PrunedDirs,
	}
}

func printRunResult(cmd *cobra.Command, opts organizer.Options, result *organizer.Result, noTree bool) {
	out := cmd.OutOrStdout()

	if !noTree && result.Summary.Moved > 0 {
		if opts.DryRun {
			fmt.Fprintln(out, "Planned layout:")
		} else {
			fmt.Fprintln(out, "New layout:")
		}
		fmt.Fprintln(out, result.Tree.Render())
		fmt.Fprintln(out)
	}

	rows := [][]string{
		{"Moved", strconv.Itoa(result.Summary.Moved), humanize.Bytes(uint64(result.BytesMoved))},
		{"Duplicates skipped", strconv.Itoa(result.Summary.DuplicatesSkipped), ""},
		{"Failed", strconv.Itoa(result.Summary.Failed), ""},
	}
	fmt.Fprintln(out, renderTable([]column{
		{title: "Outcome"},
		{title: "Files", numeric: true},
		{title: "Size", numeric: true},
	}, rows))

	if len(result.Failures) > 0 {
		failRows := make([][]string, 0, len(result.Failures))
		for _, f := range result.Failures {
			failRows = append(failRows, []string{f.Path, f.Err})
		}
		fmt.Fprintln(out, renderTable([]column{
			{title: "Failed file"},
			{title: "Error"},
		}, failRows))
	}

	if opts.DryRun {
		fmt.Fprintln(out, "Dry run: nothing was moved.")
	}
	if len(result.PrunedDirs) > 0 {
		fmt.Fprintf(out, "Removed %d empty directories.\n", len(result.PrunedDirs))
	}
}
