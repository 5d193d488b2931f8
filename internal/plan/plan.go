package plan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileRecord captures the facts about a discovered file that planning needs.
// Immutable once scanned.
type FileRecord struct {
	AbsolutePath string
	SizeBytes    int64
	ModifiedTime time.Time
	Extension    string // lowercase, no leading dot, possibly empty
}

// Options controls the destination layout under the category directory.
type Options struct {
	// ByDate inserts a YYYY-MM segment derived from the modification time.
	ByDate bool
	// BySize inserts a Small / Medium / Large segment.
	BySize bool
	// MaxAgeDays skips files whose modification time is older than this
	// many days. Zero disables the cutoff.
	MaxAgeDays float64
}

// DestinationPlan is the computed relative target for one file. Segments run
// category, then the optional date and size buckets, then the filename.
type DestinationPlan struct {
	SourcePath string
	Segments   []string
}

// RelativePath joins the plan's segments.
func (p DestinationPlan) RelativePath() string {
	return filepath.Join(p.Segments...)
}

// Size bucket thresholds.
const (
	smallLimit  = 1 << 20   // 1 MiB
	mediumLimit = 100 << 20 // 100 MiB
)

// SizeBucket classifies a byte count into Small, Medium, or Large.
func SizeBucket(sizeBytes int64) string {
	switch {
	case sizeBytes < smallLimit:
		return "Small"
	case sizeBytes < mediumLimit:
		return "Medium"
	default:
		return "Large"
	}
}

// DateSegment formats a modification time as its YYYY-MM bucket.
func DateSegment(t time.Time) string {
	return t.Format("2006-01")
}

// Build computes the relative destination for rec in the fixed segment order
// category, date bucket, size bucket, filename.
func Build(rec FileRecord, category string, opts Options) DestinationPlan {
	segments := make([]string, 0, 4)
	segments = append(segments, category)
	if opts.ByDate {
		segments = append(segments, DateSegment(rec.ModifiedTime))
	}
	if opts.BySize {
		segments = append(segments, SizeBucket(rec.SizeBytes))
	}
	segments = append(segments, filepath.Base(rec.AbsolutePath))
	return DestinationPlan{SourcePath: rec.AbsolutePath, Segments: segments}
}

// TooOld reports whether rec falls outside the MaxAgeDays cutoff at the
// given reference time.
func (o Options) TooOld(rec FileRecord, now time.Time) bool {
	if o.MaxAgeDays <= 0 {
		return false
	}
	cutoff := time.Duration(o.MaxAgeDays * float64(24) * float64(time.Hour))
	return now.Sub(rec.ModifiedTime) > cutoff
}

// Allocator resolves filename collisions under a root directory. It reserves
// every path it hands out, so within one run no two plans resolve to the same
// absolute target, and it never reuses a path that already exists on disk.
type Allocator struct {
	root     string
	reserved map[string]struct{}
	stat     func(string) (fs.FileInfo, error)
}

// NewAllocator returns an Allocator for targets beneath root.
func NewAllocator(root string) *Allocator {
	return &Allocator{
		root:     root,
		reserved: make(map[string]struct{}),
		stat:     os.Stat,
	}
}

const maxSuffix = 10000

// Allocate resolves p to a unique absolute target path, appending _1, _2, …
// before the extension until the path is neither reserved in this run nor
// present on disk. Deterministic given a stable planning order.
func (a *Allocator) Allocate(p DestinationPlan) (string, error) {
	candidate := filepath.Join(a.root, p.RelativePath())
	if a.free(candidate) {
		a.reserved[candidate] = struct{}{}
		return candidate, nil
	}

	dir := filepath.Dir(candidate)
	base := filepath.Base(candidate)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for suffix := 1; suffix <= maxSuffix; suffix++ {
		next := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, suffix, ext))
		if a.free(next) {
			a.reserved[next] = struct{}{}
			return next, nil
		}
	}
	return "", fmt.Errorf("exhausted collision suffixes for %s", candidate)
}

// Release frees a reservation, used when a planned move fails and the target
// path never materialized.
func (a *Allocator) Release(target string) {
	delete(a.reserved, target)
}

func (a *Allocator) free(path string) bool {
	if _, taken := a.reserved[path]; taken {
		return false
	}
	if _, err := a.stat(path); err == nil {
		return false
	} else if !errors.Is(err, fs.ErrNotExist) {
		// Unreadable targets count as occupied rather than risking an
		// overwrite.
		return false
	}
	return true
}
