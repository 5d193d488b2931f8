package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"nexsort/internal/category"
	"nexsort/internal/faults"
	"nexsort/internal/fileutil"
	"nexsort/internal/fingerprint"
	"nexsort/internal/history"
	"nexsort/internal/logging"
	"nexsort/internal/plan"
	"nexsort/internal/tree"
)

// lockFileName is created inside the root for the duration of a run so two
// organizers cannot interleave moves in the same directory.
const lockFileName = ".nexsort.lock"

// Options controls one organizer run.
type Options struct {
	Layout plan.Options
	// DryRun plans, counts, and renders without touching the filesystem.
	DryRun bool
	// PruneEmptyDirs removes directories left empty once files moved out.
	PruneEmptyDirs bool
}

// Summary is the aggregate outcome of a run.
type Summary struct {
	Moved             int `json:"moved"`
	DuplicatesSkipped int `json:"duplicatesSkipped"`
	Failed            int `json:"failed"`
}

// Failure records one file that could not be processed.
type Failure struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// Result carries everything a run produced for the presentation layer.
type Result struct {
	Summary    Summary
	BytesMoved int64
	Failures   []Failure
	Tree       *tree.Tree
	RunID      string
	PrunedDirs []string
}

// ProgressFunc is invoked after each file is decided.
type ProgressFunc func(processed, total int, path string)

// Organizer walks a root directory and moves each file to its categorized
// destination, skipping byte-identical duplicates. One instance serves one
// run; the seen-digest set is never shared between runs.
type Organizer struct {
	root     string
	mapping  *category.Mapping
	opts     Options
	logger   *slog.Logger
	ledger   *history.Store
	progress ProgressFunc
	now      func() time.Time
}

// New constructs an organizer for root using the given category mapping.
func New(root string, mapping *category.Mapping, opts Options, logger *slog.Logger) *Organizer {
	if mapping == nil {
		mapping = category.Defaults()
	}
	return &Organizer{
		root:    root,
		mapping: mapping,
		opts:    opts,
		logger:  logging.Default(logger).With(logging.String(logging.FieldComponent, "organizer")),
		now:     time.Now,
	}
}

// WithLedger attaches a history store; ledger failures are logged, never
// fatal.
func (o *Organizer) WithLedger(store *history.Store) *Organizer {
	o.ledger = store
	return o
}

// WithProgress attaches a per-file progress callback.
func (o *Organizer) WithProgress(fn ProgressFunc) *Organizer {
	o.progress = fn
	return o
}

// Run executes the full pipeline: validate root, lock it, scan, decide each
// file, optionally prune emptied directories, and emit the summary. Per-file
// failures never abort the run; only an invalid root or a lock conflict does.
func (o *Organizer) Run(ctx context.Context) (*Result, error) {
	root, err := o.validateRoot()
	if err != nil {
		return nil, err
	}
	o.root = root

	unlock, err := o.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	records, err := o.scan()
	if err != nil {
		return nil, err
	}

	o.logger.Info("starting run",
		logging.String("root", root),
		logging.Int("files", len(records)),
		logging.Bool("by_date", o.opts.Layout.ByDate),
		logging.Bool("by_size", o.opts.Layout.BySize),
		logging.Bool("dry_run", o.opts.DryRun),
	)

	result := &Result{Tree: tree.New(filepath.Base(root))}
	o.beginLedgerRun(ctx, result)

	digests := fingerprint.NewStore()
	allocator := plan.NewAllocator(root)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.processFile(ctx, rec, digests, allocator, result)
		if o.progress != nil {
			o.progress(i+1, len(records), rec.AbsolutePath)
		}
	}

	if o.opts.PruneEmptyDirs && !o.opts.DryRun {
		pruned, pruneErr := fileutil.PruneEmptyDirs(root)
		if pruneErr != nil {
			o.logger.Warn("pruning empty directories failed", logging.Error(pruneErr))
		}
		result.PrunedDirs = pruned
	}

	o.finishLedgerRun(ctx, result)
	o.logger.Info("run complete",
		logging.Int("moved", result.Summary.Moved),
		logging.Int("duplicates_skipped", result.Summary.DuplicatesSkipped),
		logging.Int("failed", result.Summary.Failed),
	)
	return result, nil
}

// processFile drives one file through the per-file states:
// Discovered -> Hashed -> {Duplicate-Skipped | Planned} -> Moved -> Recorded.
func (o *Organizer) processFile(ctx context.Context, rec plan.FileRecord, digests *fingerprint.Store, allocator *plan.Allocator, result *Result) {
	digest, err := fingerprint.Sum(rec.AbsolutePath)
	if err != nil {
		o.fail(ctx, rec, result, err)
		return
	}

	if digests.Seen(digest) {
		original, _ := digests.Original(digest)
		result.Summary.DuplicatesSkipped++
		o.logger.Info("duplicate skipped",
			logging.String("path", rec.AbsolutePath),
			logging.String("identical_to", original),
		)
		o.recordDecision(ctx, result, history.Decision{
			SourcePath: rec.AbsolutePath,
			Digest:     string(digest),
			Action:     history.ActionDuplicate,
			Detail:     fmt.Sprintf("identical to %s", original),
		})
		return
	}
	digests.Record(digest, rec.AbsolutePath)

	categoryName := o.mapping.Resolve(rec.Extension)
	p := plan.Build(rec, categoryName, o.opts.Layout)
	target, err := allocator.Allocate(p)
	if err != nil {
		o.fail(ctx, rec, result, faults.Wrap(faults.ErrIO, "organizing", "allocate target", rec.AbsolutePath, err))
		return
	}

	if !o.opts.DryRun {
		if err := fileutil.Move(rec.AbsolutePath, target); err != nil {
			allocator.Release(target)
			o.fail(ctx, rec, result, faults.Wrap(faults.ErrIO, "organizing", "move file", rec.AbsolutePath, err))
			return
		}
	}

	rel, relErr := filepath.Rel(o.root, target)
	if relErr != nil {
		rel = target
	}
	result.Tree.Insert(splitSegments(rel)...)
	result.Summary.Moved++
	result.BytesMoved += rec.SizeBytes
	o.logger.Info("file moved",
		logging.String("source", rec.AbsolutePath),
		logging.String("target", rel),
		logging.String("category", categoryName),
	)
	o.recordDecision(ctx, result, history.Decision{
		SourcePath: rec.AbsolutePath,
		TargetPath: target,
		Digest:     string(digest),
		Action:     history.ActionMoved,
	})
}

func (o *Organizer) fail(ctx context.Context, rec plan.FileRecord, result *Result, err error) {
	result.Summary.Failed++
	result.Failures = append(result.Failures, Failure{Path: rec.AbsolutePath, Err: err.Error()})
	o.logger.Warn("file failed", logging.String("path", rec.AbsolutePath), logging.Error(err))
	o.recordDecision(ctx, result, history.Decision{
		SourcePath: rec.AbsolutePath,
		Action:     history.ActionFailed,
		Detail:     err.Error(),
	})
}

func (o *Organizer) validateRoot() (string, error) {
	root, err := filepath.Abs(o.root)
	if err != nil {
		return "", faults.Wrap(faults.ErrInvalidInput, "organizing", "resolve root", o.root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", faults.Wrap(faults.ErrInvalidInput, "organizing", "stat root", root, err)
	}
	if !info.IsDir() {
		return "", faults.Wrap(faults.ErrInvalidInput, "organizing", "stat root", root+" is not a directory", nil)
	}
	return root, nil
}

func (o *Organizer) acquireLock() (func(), error) {
	lockPath := filepath.Join(o.root, lockFileName)
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, faults.Wrap(faults.ErrLocked, "organizing", "lock root", lockPath, err)
	}
	if !locked {
		return nil, faults.Wrap(faults.ErrLocked, "organizing", "lock root",
			"another nexsort run is organizing this directory", nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			o.logger.Warn("releasing run lock failed", logging.Error(err))
		}
		_ = os.Remove(lockPath)
	}, nil
}

func (o *Organizer) beginLedgerRun(ctx context.Context, result *Result) {
	if o.ledger == nil {
		return
	}
	runID, err := o.ledger.BeginRun(ctx, o.root, o.opts.Layout.ByDate, o.opts.Layout.BySize, o.opts.DryRun)
	if err != nil {
		o.logger.Warn("history ledger unavailable", logging.Error(err))
		o.ledger = nil
		return
	}
	result.RunID = runID
}

func (o *Organizer) recordDecision(ctx context.Context, result *Result, d history.Decision) {
	if o.ledger == nil || result.RunID == "" {
		return
	}
	d.RunID = result.RunID
	if err := o.ledger.RecordDecision(ctx, d); err != nil {
		o.logger.Warn("recording decision failed", logging.Error(err))
	}
}

func (o *Organizer) finishLedgerRun(ctx context.Context, result *Result) {
	if o.ledger == nil || result.RunID == "" {
		return
	}
	s := result.Summary
	if err := o.ledger.FinishRun(ctx, result.RunID, s.Moved, s.DuplicatesSkipped, s.Failed); err != nil {
		o.logger.Warn("finishing ledger run failed", logging.Error(err))
	}
}
