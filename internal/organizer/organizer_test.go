package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"nexsort/internal/faults"
	"nexsort/internal/history"
	"nexsort/internal/logging"
	"nexsort/internal/organizer"
	"nexsort/internal/plan"
	"nexsort/internal/testsupport"
)

func run(t *testing.T, root string, opts organizer.Options) *organizer.Result {
	t.Helper()
	org := organizer.New(root, nil, opts, logging.NewNop())
	result, err := org.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return result
}

func TestRunByDateWithDuplicate(t *testing.T) {
	root := t.TempDir()
	jan := time.Date(2023, time.January, 5, 10, 0, 0, 0, time.Local)
	feb := time.Date(2023, time.February, 1, 10, 0, 0, 0, time.Local)
	testsupport.WriteFileMtime(t, filepath.Join(root, "a.jpg"), "photo bytes", jan)
	testsupport.WriteFileMtime(t, filepath.Join(root, "b.jpg"), "photo bytes", jan)
	testsupport.WriteFileMtime(t, filepath.Join(root, "c.mp3"), "audio bytes", feb)

	result := run(t, root, organizer.Options{Layout: plan.Options{ByDate: true}})

	want := organizer.Summary{Moved: 2, DuplicatesSkipped: 1, Failed: 0}
	if result.Summary != want {
		t.Fatalf("summary %+v, want %+v", result.Summary, want)
	}
	if _, err := os.Stat(filepath.Join(root, "Images", "2023-01", "a.jpg")); err != nil {
		t.Fatalf("a.jpg not at expected destination: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Audio", "2023-02", "c.mp3")); err != nil {
		t.Fatalf("c.mp3 not at expected destination: %v", err)
	}
	// The duplicate stays untouched at its source.
	if _, err := os.Stat(filepath.Join(root, "b.jpg")); err != nil {
		t.Fatalf("duplicate should remain at source: %v", err)
	}
}

func TestFirstSeenWinsFollowsTraversalOrder(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "sub", "z.png"), "identical")
	testsupport.WriteFile(t, filepath.Join(root, "a.png"), "identical")

	result := run(t, root, organizer.Options{})

	// Lexical order visits root files before sub/, so a.png is the original.
	if _, err := os.Stat(filepath.Join(root, "Images", "a.png")); err != nil {
		t.Fatalf("a.png should have been moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "sub", "z.png")); err != nil {
		t.Fatalf("z.png should remain as the skipped duplicate: %v", err)
	}
	if result.Summary.Moved != 1 || result.Summary.DuplicatesSkipped != 1 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
}

func TestCollisionGetsSuffix(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), "first image")
	testsupport.WriteFile(t, filepath.Join(root, "sub", "a.jpg"), "second image")

	result := run(t, root, organizer.Options{})

	if result.Summary.Moved != 2 {
		t.Fatalf("expected 2 moves, got %+v", result.Summary)
	}
	if _, err := os.Stat(filepath.Join(root, "Images", "a.jpg")); err != nil {
		t.Fatalf("first a.jpg missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Images", "a_1.jpg")); err != nil {
		t.Fatalf("second a.jpg should be suffixed: %v", err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), "one")
	testsupport.WriteFile(t, filepath.Join(root, "b.mp3"), "two")
	testsupport.WriteFile(t, filepath.Join(root, "notes"), "three")

	opts := organizer.Options{Layout: plan.Options{BySize: true}}
	first := run(t, root, opts)
	if first.Summary.Moved != 3 {
		t.Fatalf("first run should move everything: %+v", first.Summary)
	}

	second := run(t, root, opts)
	if second.Summary.Moved != 0 || second.Summary.DuplicatesSkipped != 0 || second.Summary.Failed != 0 {
		t.Fatalf("second run should be a no-op: %+v", second.Summary)
	}
}

func TestExtensionlessFilesLandInOther(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "README"), "no extension")

	result := run(t, root, organizer.Options{})

	if result.Summary.Moved != 1 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if _, err := os.Stat(filepath.Join(root, "Other", "README")); err != nil {
		t.Fatalf("extensionless file should land in Other: %v", err)
	}
}

func TestPerFileFailureDoesNotAbortRun(t *testing.T) {
	root := t.TempDir()
	// "AAA.bin" and the file literally named "Images" share content, so
	// "Images" is skipped as a duplicate and keeps blocking the category
	// directory. Moving z.jpg then fails, but the run continues.
	testsupport.WriteFile(t, filepath.Join(root, "AAA.bin"), "blocker")
	testsupport.WriteFile(t, filepath.Join(root, "Images"), "blocker")
	testsupport.WriteFile(t, filepath.Join(root, "z.jpg"), "a photo")
	testsupport.WriteFile(t, filepath.Join(root, "zz.mp3"), "a song")

	result := run(t, root, organizer.Options{})

	if result.Summary.Failed != 1 {
		t.Fatalf("expected one failure, got %+v", result.Summary)
	}
	if result.Summary.Moved != 2 || result.Summary.DuplicatesSkipped != 1 {
		t.Fatalf("run should continue past the failure: %+v", result.Summary)
	}
	if len(result.Failures) != 1 || result.Failures[0].Path != filepath.Join(root, "z.jpg") {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	if _, err := os.Stat(filepath.Join(root, "Audio", "zz.mp3")); err != nil {
		t.Fatalf("later file should still be moved: %v", err)
	}
}

func TestInvalidRootFailsBeforeProcessing(t *testing.T) {
	org := organizer.New(filepath.Join(t.TempDir(), "missing"), nil, organizer.Options{}, logging.NewNop())
	_, err := org.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	if !errors.Is(err, faults.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLockedRootRefusesSecondRun(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), "x")

	held := flock.New(filepath.Join(root, ".nexsort.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer func() { _ = held.Unlock() }()

	org := organizer.New(root, nil, organizer.Options{}, logging.NewNop())
	_, err = org.Run(context.Background())
	if !errors.Is(err, faults.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(root, "a.jpg")); statErr != nil {
		t.Fatalf("locked run must not touch files: %v", statErr)
	}
}

func TestDryRunTouchesNothing(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), "one")
	testsupport.WriteFile(t, filepath.Join(root, "b.jpg"), "one")
	testsupport.WriteFile(t, filepath.Join(root, "c.pdf"), "two")

	result := run(t, root, organizer.Options{DryRun: true, PruneEmptyDirs: true})

	want := organizer.Summary{Moved: 2, DuplicatesSkipped: 1}
	if result.Summary != want {
		t.Fatalf("summary %+v, want %+v", result.Summary, want)
	}
	for _, name := range []string{"a.jpg", "b.jpg", "c.pdf"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Fatalf("dry run moved %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "Images")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run created directories: %v", err)
	}
	if result.Tree.Len() != 2 {
		t.Fatalf("planned tree should hold the 2 would-be moves, got %d", result.Tree.Len())
	}
}

func TestMaxAgeSkipsOldFiles(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	testsupport.WriteFileMtime(t, filepath.Join(root, "old.txt"), "old", now.AddDate(0, 0, -60))
	testsupport.WriteFileMtime(t, filepath.Join(root, "new.txt"), "new", now.AddDate(0, 0, -1))

	result := run(t, root, organizer.Options{Layout: plan.Options{MaxAgeDays: 30}})

	if result.Summary.Moved != 1 {
		t.Fatalf("expected only the recent file to move: %+v", result.Summary)
	}
	if _, err := os.Stat(filepath.Join(root, "old.txt")); err != nil {
		t.Fatalf("old file must stay put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Documents", "new.txt")); err != nil {
		t.Fatalf("recent file should move: %v", err)
	}
}

func TestPruneRemovesEmptiedDirectories(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "nested", "deep", "song.mp3"), "tune")

	result := run(t, root, organizer.Options{PruneEmptyDirs: true})

	if result.Summary.Moved != 1 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if _, err := os.Stat(filepath.Join(root, "nested")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("emptied directory should be pruned: %v", err)
	}
	if len(result.PrunedDirs) != 2 {
		t.Fatalf("expected 2 pruned dirs, got %v", result.PrunedDirs)
	}
}

func TestTreeReflectsOnlyMovedFiles(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), "same")
	testsupport.WriteFile(t, filepath.Join(root, "b.jpg"), "same")

	result := run(t, root, organizer.Options{})

	if result.Tree.Len() != 1 {
		t.Fatalf("tree should only include moved files, got %d leaves", result.Tree.Len())
	}
}

func TestLedgerRecordsRun(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), "same")
	testsupport.WriteFile(t, filepath.Join(root, "b.jpg"), "same")
	testsupport.WriteFile(t, filepath.Join(root, "c.pdf"), "doc")

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer store.Close()

	org := organizer.New(root, nil, organizer.Options{}, logging.NewNop()).WithLedger(store)
	result, err := org.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.RunID == "" {
		t.Fatal("expected ledger run id")
	}

	ctx := context.Background()
	runRow, err := store.GetRun(ctx, result.RunID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if runRow.Moved != result.Summary.Moved || runRow.Duplicates != result.Summary.DuplicatesSkipped || runRow.Failed != result.Summary.Failed {
		t.Fatalf("ledger counts %+v disagree with summary %+v", runRow, result.Summary)
	}

	decisions, err := store.Decisions(ctx, result.RunID)
	if err != nil {
		t.Fatalf("decisions: %v", err)
	}
	var moved, dup, failed int
	for _, d := range decisions {
		switch d.Action {
		case history.ActionMoved:
			moved++
		case history.ActionDuplicate:
			dup++
		case history.ActionFailed:
			failed++
		}
	}
	if moved != 2 || dup != 1 || failed != 0 {
		t.Fatalf("unexpected decision counts: moved=%d dup=%d failed=%d", moved, dup, failed)
	}
}

func TestProgressCallbackSeesEveryFile(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), "1")
	testsupport.WriteFile(t, filepath.Join(root, "b.mp3"), "2")

	var calls int
	var lastTotal int
	org := organizer.New(root, nil, organizer.Options{}, logging.NewNop()).
		WithProgress(func(processed, total int, _ string) {
			calls++
			lastTotal = total
			if processed != calls {
				t.Fatalf("processed %d on call %d", processed, calls)
			}
		})
	if _, err := org.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 2 || lastTotal != 2 {
		t.Fatalf("expected 2 progress calls over 2 files, got calls=%d total=%d", calls, lastTotal)
	}
}
