// Package metacache remembers what the client last confirmed about each
// mirrored file, so unchanged files are skipped without trusting local
// timestamps alone.
package metacache
