package ratelimit

import (
	"time"
)

// Config is an immutable rate-limit policy, supplied per call.
type Config struct {
	// MaxRequests is the number of requests admitted per Window.
	MaxRequests int

	// Window is the trailing interval requests are counted over.
	Window time.Duration

	// KeyPrefix namespaces this policy's state in both backends, so
	// distinct policies never share a window for the same identifier.
	KeyPrefix string
}

// Named presets. Callers may also construct their own Config.
var (
	Default = Config{MaxRequests: 60, Window: time.Minute, KeyPrefix: "rl:default"}
	Strict  = Config{MaxRequests: 10, Window: time.Minute, KeyPrefix: "rl:strict"}
	Relaxed = Config{MaxRequests: 100, Window: time.Minute, KeyPrefix: "rl:relaxed"}
)

// Result is the outcome of a single rate-limit check. It is a pure value,
// recomputed on every check.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Remaining is the number of further requests the current window will
	// admit. Never negative.
	Remaining int

	// Limit echoes the policy's MaxRequests, for response headers.
	Limit int

	// ResetTime is when the window frees capacity.
	ResetTime time.Time

	// RetryAfter is how long a denied caller should wait; zero when
	// Allowed.
	RetryAfter time.Duration
}

func (c Config) key(identifier string) string {
	return c.KeyPrefix + ":" + identifier
}
