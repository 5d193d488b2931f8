package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current ledger schema version. Bump when the schema
// changes; old databases are rejected rather than silently migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Action classifies what happened to one file during a run.
type Action string

const (
	ActionMoved     Action = "moved"
	ActionDuplicate Action = "duplicate"
	ActionFailed    Action = "failed"
)

// Run is one organizer invocation as stored in the ledger.
type Run struct {
	ID         string
	Root       string
	ByDate     bool
	BySize     bool
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Moved      int
	Duplicates int
	Failed     int
}

// Decision is the recorded outcome for one file.
type Decision struct {
	RunID      string
	SourcePath string
	TargetPath string
	Digest     string
	Action     Action
	Detail     string
	DecidedAt  time.Time
}

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// BeginRun inserts a new run row and returns its generated ID.
func (s *Store) BeginRun(ctx context.Context, root string, byDate, bySize, dryRun bool) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, root, by_date, by_size, dry_run, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		id, root, boolInt(byDate), boolInt(bySize), boolInt(dryRun),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordDecision appends one per-file outcome to the ledger.
func (s *Store) RecordDecision(ctx context.Context, d Decision) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (run_id, source_path, target_path, digest, action, detail, decided_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.RunID, d.SourcePath, nullable(d.TargetPath), nullable(d.Digest),
		string(d.Action), nullable(d.Detail),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// FinishRun stamps the run's end time and summary counts.
func (s *Store) FinishRun(ctx context.Context, runID string, moved, duplicates, failed int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, moved = ?, duplicates = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), moved, duplicates, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, by_date, by_size, dry_run, started_at, finished_at, moved, duplicates, failed
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a single run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, root, by_date, by_size, dry_run, started_at, finished_at, moved, duplicates, failed
         FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s not found", runID)
	}
	return run, err
}

// Decisions returns the per-file outcomes of a run in decision order.
func (s *Store) Decisions(ctx context.Context, runID string) ([]Decision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source_path, target_path, digest, action, detail, decided_at
         FROM decisions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var d Decision
		var target, digest, detail sql.NullString
		var decidedAt string
		if err := rows.Scan(&d.RunID, &d.SourcePath, &target, &digest, &d.Action, &detail, &decidedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.TargetPath = target.String
		d.Digest = digest.String
		d.Detail = detail.String
		d.DecidedAt, _ = time.Parse(time.RFC3339Nano, decidedAt)
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var byDate, bySize, dryRun int
	var started string
	var finished sql.NullString
	if err := row.Scan(&run.ID, &run.Root, &byDate, &bySize, &dryRun,
		&started, &finished, &run.Moved, &run.Duplicates, &run.Failed); err != nil {
		return Run{}, err
	}
	run.ByDate = byDate != 0
	run.BySize = bySize != 0
	run.DryRun = dryRun != 0
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return run, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
