// Package utils holds small helpers shared by the HTTP handlers and the CLI:
// truthy value parsing and human readable byte counts.
package utils
