// Package client implements the catalog protocol on the client side.
//
// Listing calls (GetDir, ListFiles) decode JSON and are retried with backoff on
// network errors and 5xx responses. File content is streamed through a
// Transfer, which tracks its own lifecycle and progress so callers can report
// it and discard partial output on failure.
//
// Every failure wraps ErrTransport; undecodable bodies additionally wrap
// ErrParse.
package client
