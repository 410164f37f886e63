// Package cache exposes one get/set/delete contract over two backends: the
// shared Redis coordination store and a process-local bounded store.
//
// # Overview
//
// Every write lands in the local store first, so a same-process Get right
// after Set always observes the written value, and is then mirrored to
// Redis on a best-effort basis. Reads try Redis first (another instance may
// have written a fresher value) and fall back to the local store when Redis
// is unreachable or errors. The caller-visible behavior is identical either
// way, modulo staleness.
//
// # Error Policy
//
// The facade is best-effort infrastructure: no Redis failure is ever
// surfaced to callers. Remote errors are logged with the operation and key
// (never the value) and the call completes from local state. The only
// errors callers see are their own: a value that cannot be JSON-encoded, or
// an error returned by a GetOrSet factory.
//
// # Degraded Mode
//
// With the coordination store down, reads may return data that is staler
// than what other instances hold, since each process answers from its own
// mirror. This is the intended availability-over-consistency trade-off.
//
// # Synchronous Variants
//
// GetLocal, SetLocal, DeleteLocal and HasLocal touch only the local store
// and never perform network I/O. They exist for call sites that cannot
// tolerate latency, such as inline middleware.
//
// # Configuration
//
// The facade is configured with functional options:
//
//	c := cache.New(accessor, store,
//		cache.WithPrefix("cache:"),
//		cache.WithTimeout(2*time.Second),
//	)
//
// Supported options:
//
//   - WithPrefix(string): key namespace prepended to every stored key
//     (default "cache:"), keeping the facade disjoint from the rate
//     limiter in the shared store.
//   - WithTimeout(time.Duration): per-operation deadline for Redis calls
//     (default 5s); on timeout the call falls back to the local store.
package cache
