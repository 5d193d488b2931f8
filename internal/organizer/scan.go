package organizer

import (
	"io/fs"
	"path/filepath"
	"strings"

	"nexsort/internal/category"
	"nexsort/internal/faults"
	"nexsort/internal/logging"
	"nexsort/internal/plan"
)

// scan discovers the files to organize in lexical traversal order. That
// order is what makes first-seen-wins duplicate selection and collision
// suffixes reproducible, so nothing downstream may reorder the slice.
func (o *Organizer) scan() ([]plan.FileRecord, error) {
	categoryDirs := make(map[string]struct{})
	for _, name := range o.mapping.Categories() {
		categoryDirs[filepath.Join(o.root, name)] = struct{}{}
	}

	now := o.now()
	var records []plan.FileRecord
	err := filepath.WalkDir(o.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == o.root {
				return walkErr
			}
			o.logger.Warn("skipping unreadable entry", logging.String("path", path), logging.Error(walkErr))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			// Files already organized into a category directory stay put;
			// that is what makes re-running a no-op.
			if _, ok := categoryDirs[path]; ok {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if d.Name() == lockFileName && filepath.Dir(path) == o.root {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			o.logger.Warn("skipping unstatable file", logging.String("path", path), logging.Error(err))
			return nil
		}
		rec := plan.FileRecord{
			AbsolutePath: path,
			SizeBytes:    info.Size(),
			ModifiedTime: info.ModTime(),
			Extension:    category.NormalizeExt(filepath.Ext(path)),
		}
		if o.opts.Layout.TooOld(rec, now) {
			o.logger.Debug("skipping file beyond age cutoff", logging.String("path", path))
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, faults.Wrap(faults.ErrInvalidInput, "organizing", "scan root", o.root, err)
	}
	return records, nil
}

func splitSegments(rel string) []string {
	return strings.Split(filepath.ToSlash(rel), "/")
}
