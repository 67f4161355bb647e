// Package sorter copies every file found under a source directory into
// per-extension buckets below an output directory.
//
// It walks the source tree using fastwalk for parallel traversal, derives a
// bucket name from each file's lowercase extension (or "no_extension"), and
// copies the file into <output>/<bucket>/<name>. Nested directories are
// flattened: source depth never changes the destination.
//
// Failures below startup validation are logged and counted, never fatal.
package sorter
