package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"nexsort/internal/faults"
)

// Digest is the hex form of a file's SHA-256 content hash.
type Digest string

// Sum streams the full content of path through SHA-256. The file handle is
// closed on every exit path; read failures wrap faults.ErrIO.
func Sum(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", faults.Wrap(faults.ErrIO, "fingerprint", "open file", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", faults.Wrap(faults.ErrIO, "fingerprint", "read file", path, err)
	}
	return Digest(hex.EncodeToString(hasher.Sum(nil))), nil
}

// Store tracks the digests seen during one run. It is scoped to a single
// organizer instance so independent runs never share state. First-seen-wins:
// callers must feed digests in traversal order for reproducible duplicate
// selection.
type Store struct {
	seen map[Digest]string
}

// NewStore returns an empty digest set.
func NewStore() *Store {
	return &Store{seen: make(map[Digest]string)}
}

// Seen reports whether the digest was recorded earlier in this run without
// mutating the set.
func (s *Store) Seen(d Digest) bool {
	_, ok := s.seen[d]
	return ok
}

// Original returns the source path first recorded for the digest.
func (s *Store) Original(d Digest) (string, bool) {
	path, ok := s.seen[d]
	return path, ok
}

// Record marks the digest as seen, remembering the path of its first
// occurrence. Recording an already-present digest is a no-op.
func (s *Store) Record(d Digest, sourcePath string) {
	if _, ok := s.seen[d]; ok {
		return
	}
	s.seen[d] = sourcePath
}

// Len returns the number of distinct digests recorded.
func (s *Store) Len() int {
	return len(s.seen)
}
