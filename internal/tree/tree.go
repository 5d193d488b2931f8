package tree

import (
	"iter"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Node is one entry in the layout tree. Directories hold ordered children;
// leaves are files.
type Node struct {
	Name     string
	IsLeaf   bool
	children map[string]*Node
}

// Tree accumulates destination paths into a hierarchy and renders it as an
// indented textual tree. Rendering order is independent of insert order.
type Tree struct {
	root *Node
}

// New returns a Tree whose root line carries the given name.
func New(rootName string) *Tree {
	return &Tree{root: &Node{Name: rootName, children: make(map[string]*Node)}}
}

// Insert adds a file path, given as ordered segments, creating intermediate
// directory nodes as needed. The final segment becomes a leaf. Repeated
// insertion of the same path is a no-op.
func (t *Tree) Insert(segments ...string) {
	node := t.root
	for i, segment := range segments {
		leaf := i == len(segments)-1
		key := childKey(segment, leaf)
		child, ok := node.children[key]
		if !ok {
			child = &Node{Name: segment, IsLeaf: leaf}
			if !leaf {
				child.children = make(map[string]*Node)
			}
			node.children[key] = child
		}
		node = child
	}
}

// Len reports the number of leaves in the tree.
func (t *Tree) Len() int {
	return countLeaves(t.root)
}

func countLeaves(n *Node) int {
	if n.IsLeaf {
		return 1
	}
	total := 0
	for _, child := range n.children {
		total += countLeaves(child)
	}
	return total
}

// Directory and file nodes may share a name; key them apart.
func childKey(name string, leaf bool) string {
	if leaf {
		return "f\x00" + name
	}
	return "d\x00" + name
}

// Lines yields the rendered tree one line at a time: the root name first,
// then every node with box-drawing prefixes, directories before files and
// both groups in case-insensitive alphabetical order. The sequence is finite
// and restartable, and iteration never mutates the tree.
func (t *Tree) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(t.root.Name) {
			return
		}
		walk(t.root, "", yield)
	}
}

// Render joins Lines with newlines.
func (t *Tree) Render() string {
	var b strings.Builder
	first := true
	for line := range t.Lines() {
		if !first {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		first = false
	}
	return b.String()
}

func walk(node *Node, prefix string, yield func(string) bool) bool {
	ordered := orderedChildren(node)
	for i, child := range ordered {
		last := i == len(ordered)-1
		connector := "├── "
		childPrefix := prefix + "│   "
		if last {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		if !yield(prefix + connector + child.Name) {
			return false
		}
		if !child.IsLeaf {
			if !walk(child, childPrefix, yield) {
				return false
			}
		}
	}
	return true
}

func orderedChildren(node *Node) []*Node {
	// Collators are not safe for concurrent use, so each ordering pass
	// builds its own.
	caseless := collate.New(language.Und, collate.IgnoreCase)
	children := make([]*Node, 0, len(node.children))
	for _, child := range node.children {
		children = append(children, child)
	}
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.IsLeaf != b.IsLeaf {
			return !a.IsLeaf // directories first
		}
		if cmp := caseless.CompareString(a.Name, b.Name); cmp != 0 {
			return cmp < 0
		}
		return a.Name < b.Name
	})
	return children
}
