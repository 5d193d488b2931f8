// Package organizer orchestrates a full run: scan the root in a stable
// order, fingerprint each file, skip byte-identical duplicates, plan a
// collision-free destination, move the file, and aggregate the summary.
//
// Processing is single threaded on purpose. First-seen-wins duplicate
// selection and the collision suffix counter both depend on the lexical
// traversal order staying reproducible. One per-file failure never aborts
// the run; only an invalid root or a held run lock does.
package organizer
