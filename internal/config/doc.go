// Package config loads and validates the nexsort TOML configuration.
//
// Load resolves the file (explicit flag path, then ~/.config/nexsort,
// then ./nexsort.toml), decodes it over the defaults, expands ~ in path
// fields, and validates the result. A missing file is not an error.
package config
