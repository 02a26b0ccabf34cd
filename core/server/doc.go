// Package server holds the HTTP server configuration and the error page
// shared by all routes.
//
// # Configuration
//
// The Config struct defines the published root, scan depth, listen port or
// automatic port selection, TLS certificate location and the API key.
//
// # Errors
//
// ErrorHandler replaces Fiber's default plain text errors with a minimal
// HTML page showing the status code.
package server
