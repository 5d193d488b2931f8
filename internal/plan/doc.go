// Package plan computes where a file should land once categorized: the
// category segment, optional YYYY-MM and size-bucket segments, and a
// collision-free filename. The Allocator guarantees that no two plans in a
// run resolve to the same absolute path and that nothing on disk is ever
// overwritten.
package plan
