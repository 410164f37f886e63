// Package ratelimit provides distributed request rate limiting with a
// transparent process-local fallback.
//
// The primary entry point is Limiter.Check:
//
//	res := limiter.Check(ctx, identifier, ratelimit.Default)
//
// The returned Result contains whether the request is allowed, how many
// requests remain in the window, and timing hints for callers that want to
// set rate-limit headers (for example, Retry-After).
//
// # Overview
//
// Two accounting algorithms back the same Check API:
//
//   - Sliding window (coordination store): each admitted request leaves a
//     uniquely-tokened marker in a Redis sorted set scored by timestamp.
//     A check prunes markers older than the trailing window, counts the
//     survivors, and inserts a marker for itself, all inside one MULTI/EXEC
//     transaction. This is accurate and cluster-wide: no two instances can
//     jointly admit more than MaxRequests per window, because the
//     prune+count+insert sequence is atomic against concurrent checkers.
//
//   - Fixed window (local fallback): a {count, resetAt} counter per
//     identifier in the process-local store. This permits bursts at window
//     boundaries and counts per instance rather than cluster-wide. It is
//     used only when the coordination store is unreachable or a remote
//     check errors, and the degradation is per call, never a mode switch.
//
// With the store down, the effective cluster-wide limit is therefore
// MaxRequests multiplied by the instance count. That is the intended
// availability-over-accuracy trade-off.
//
// # Policies
//
// Config is an immutable per-call policy. Three presets cover the usual
// tiers:
//
//   - Default: 60 requests per minute
//   - Strict: 10 requests per minute (auth endpoints, expensive reports)
//   - Relaxed: 100 requests per minute (static lookups)
//
// Each preset carries its own key prefix, so the same identifier checked
// against different policies never shares a window.
//
// # Error Policy
//
// Check is total: it never returns an error and never panics a request.
// Any remote failure, including failure to acquire a connection, degrades
// that single check to the fixed-window path and is logged with the
// operation and identifier.
//
// # Concurrency
//
// Check is safe for concurrent use within a process and against other
// processes sharing the coordination store. Atomicity of the distributed
// check is delegated to the store's transaction primitive, not to
// process-local locking; the local fallback path is guarded by a mutex.
//
// # Configuration
//
// The Limiter is configured using the Functional Options pattern:
//
//	l := ratelimit.New(accessor, store,
//		ratelimit.WithTimeout(2*time.Second),
//		ratelimit.WithRecorder(myMetrics),
//	)
//
// Supported options:
//
//   - WithTimeout(time.Duration): deadline for remote check operations
//     (default 5s); a timeout degrades the check like any remote error.
//   - WithRecorder(MetricsRecorder): injects a custom metrics backend.
package ratelimit
