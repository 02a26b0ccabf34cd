// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation, disabled when no key is configured.
//   - rayid: tags every request with a ray id, stored in the context locals
//     and echoed in the X-Ray-ID response header for tracing.
package middleware
