// Package catalog publishes a scanned directory tree over HTTP.
//
// The catalog keeps a prefix index of every regular file found by the scanner
// and the directory summary of the same scan. Listing with update set re-checks
// the matched files on disk; files that disappeared stay in the index as
// tombstones so clients can delete their copies.
//
// # HTTP Endpoints
//
//   - GET /list?prefix=&update= : Files under a prefix.
//   - GET /dir : Directory tree with per-directory file counts.
//   - GET /files/* : File contents, with byte range support.
package catalog
