package tree

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Snapshot reads an on-disk directory into a Tree rooted at the directory's
// base name. Unreadable subdirectories are represented by a single
// "(access denied)" leaf instead of failing the whole snapshot.
func Snapshot(dir string) (*Tree, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	t := New(filepath.Base(root))
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if path == root {
			return walkErr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		segments := splitSegments(rel)
		if walkErr != nil {
			t.Insert(append(segments, "(access denied)")...)
			return fs.SkipDir
		}
		if d.IsDir() {
			t.insertDir(segments...)
			return nil
		}
		t.Insert(segments...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// insertDir records a directory path without a file leaf, so empty
// directories still show up in snapshots.
func (t *Tree) insertDir(segments ...string) {
	node := t.root
	for _, segment := range segments {
		key := childKey(segment, false)
		child, ok := node.children[key]
		if !ok {
			child = &Node{Name: segment, children: make(map[string]*Node)}
			node.children[key] = child
		}
		node = child
	}
}

func splitSegments(rel string) []string {
	return strings.Split(filepath.ToSlash(rel), "/")
}
