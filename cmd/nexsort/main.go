package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"nexsort/internal/faults"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		// Exit 2 marks runs refused before any work started (bad root,
		// lock held elsewhere) so scripts can tell them from partial runs.
		if faults.Fatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
