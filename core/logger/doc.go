// Package logger builds the zap logger shared by the server and the sync
// client.
//
// The Config selects the level (debug, info, warn, error) and the encoding
// (console for terminals, json for log collectors). WithRayID attaches the
// request id set by the rayid middleware, so all lines of one request can be
// correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
