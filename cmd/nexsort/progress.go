package main

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// runProgress drives a terminal progress bar from organizer callbacks. It is
// only created for interactive, non-JSON invocations.
type runProgress struct {
	writer  progress.Writer
	tracker *progress.Tracker
}

func newRunProgress(cmd *cobra.Command, jsonOut bool) *runProgress {
	if jsonOut {
		return nil
	}
	if cmd.OutOrStdout() != os.Stdout || !isatty.IsTerminal(os.Stdout.Fd()) {
		return nil
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetAutoStop(false)

	tracker := &progress.Tracker{Message: "Organizing files"}
	pw.AppendTracker(tracker)
	go pw.Render()

	return &runProgress{writer: pw, tracker: tracker}
}

func (p *runProgress) update(processed, total int, _ string) {
	p.tracker.UpdateTotal(int64(total))
	p.tracker.SetValue(int64(processed))
}

func (p *runProgress) stop() {
	p.tracker.MarkAsDone()
	p.writer.Stop()
}
