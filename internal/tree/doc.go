// Package tree builds and renders the hierarchical view of an organized
// directory. Planned destinations are inserted segment by segment; rendering
// walks the structure lazily with box-drawing prefixes, directories before
// files and case-insensitive alphabetical order within each group.
package tree
