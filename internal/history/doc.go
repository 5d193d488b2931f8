// Package history persists a ledger of organizer runs in SQLite: one row per
// run with its options and summary counts, one row per file decision (moved,
// duplicate, failed). The ledger backs the history CLI command; a broken or
// missing ledger degrades to a warning and never fails a run.
package history
