// Package category maps file extensions to coarse classification labels
// (Images, Documents, Audio, …).
//
// The mapping ships with built-in defaults and can be replaced by a JSON
// file keyed by category name. Lookup is case-insensitive and pure; files
// whose extension matches no rule land in the Other category.
package category
