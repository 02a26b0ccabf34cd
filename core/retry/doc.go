// Package retry retries operations that fail with temporary errors, waiting
// with exponential backoff and jitter between attempts.
package retry
