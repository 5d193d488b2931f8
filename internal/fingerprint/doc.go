// Package fingerprint computes content digests and tracks the set seen
// during a run so byte-identical duplicates can be skipped. Digest equality
// stands in for pairwise byte comparison; SHA-256 collisions are treated as
// negligible for this domain.
package fingerprint
