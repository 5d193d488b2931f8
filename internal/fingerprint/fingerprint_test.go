package fingerprint_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nexsort/internal/faults"
	"nexsort/internal/fingerprint"
)

func TestSumIdenticalContentMatches(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	c := filepath.Join(dir, "c.bin")
	if err := os.WriteFile(a, []byte("same bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("same bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c, []byte("different"), 0o644); err != nil {
		t.Fatal(err)
	}

	da, err := fingerprint.Sum(a)
	if err != nil {
		t.Fatalf("Sum(a): %v", err)
	}
	db, err := fingerprint.Sum(b)
	if err != nil {
		t.Fatalf("Sum(b): %v", err)
	}
	dc, err := fingerprint.Sum(c)
	if err != nil {
		t.Fatalf("Sum(c): %v", err)
	}
	if da != db {
		t.Fatalf("identical content produced different digests: %s vs %s", da, db)
	}
	if da == dc {
		t.Fatal("different content produced equal digests")
	}
	if len(da) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(da))
	}
}

func TestSumMissingFileWrapsIO(t *testing.T) {
	_, err := fingerprint.Sum(filepath.Join(t.TempDir(), "gone.bin"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected ErrIO marker, got %v", err)
	}
}

func TestStoreFirstSeenWins(t *testing.T) {
	store := fingerprint.NewStore()
	d := fingerprint.Digest("abc")

	if store.Seen(d) {
		t.Fatal("fresh store should not have seen anything")
	}
	store.Record(d, "/src/a.jpg")
	if !store.Seen(d) {
		t.Fatal("expected digest to be seen after Record")
	}

	// Idempotent: re-recording keeps the first source.
	store.Record(d, "/src/b.jpg")
	original, ok := store.Original(d)
	if !ok || original != "/src/a.jpg" {
		t.Fatalf("expected first-seen source, got %q ok=%v", original, ok)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one distinct digest, got %d", store.Len())
	}
}

func TestSeenDoesNotMutate(t *testing.T) {
	store := fingerprint.NewStore()
	if store.Seen("never-recorded") {
		t.Fatal("Seen must not record")
	}
	if store.Len() != 0 {
		t.Fatalf("Seen mutated the store: len=%d", store.Len())
	}
}
