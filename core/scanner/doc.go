// Package scanner builds the file catalog from a directory tree.
//
// A scan records every regular file as a models.FileRecord keyed by its slash
// separated path relative to the root, and builds a parallel
// models.DirectoryNode tree with per-directory file counts. The filesystem is
// accessed through afero so scans can run against an in-memory filesystem in
// tests.
//
// A missing or non-directory root fails the scan. Anything that goes wrong
// for an individual entry is logged and skipped.
package scanner
