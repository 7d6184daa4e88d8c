// Package httputil downloads remote geometry files.
//
// # Overview
//
// The pipeline accepts http and https URLs wherever it accepts a file path.
// This package provides the two pieces it needs:
//
//   - [Fetch]: GET a URL into memory with a size limit
//   - [Retry]: Automatic retry with exponential backoff
//
// # Retry
//
// [Fetch] retries transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Other statuses fail at once; 404 wraps [ErrNotFound] so callers can
// report a missing file the same way for local and remote inputs.
//
//	data, err := httputil.Fetch(ctx, nil, "https://example.org/bunny.off", 64<<20)
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Attempts: 3
//   - Base backoff: [RetryDelay], 1 second
package httputil
