// Package coord manages the shared connection to the Redis coordination
// store that backs the distributed cache and rate limiter.
//
// The Accessor owns the connection lifecycle: it dials lazily on first use,
// coalesces concurrent dial attempts into a single in-flight connection
// (via singleflight), retries failed dials with a capped backoff, and gives
// up permanently after a bounded number of failures. Once given up, or when
// no endpoint is configured at all, every Acquire call short-circuits to
// "unavailable" without touching the network.
//
// Callers never see an error from this package. Acquire reports either a
// ready-to-use connection or unavailability; the decision of what to do
// without a coordination store belongs to the caller (typically: fall back
// to process-local state).
package coord

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Conn is the slice of the Redis command surface this module depends on.
// *redis.Client satisfies it; tests can substitute a fake.
type Conn interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	ZRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

var _ Conn = (*redis.Client)(nil)

// Acquirer is the seam the cache and rate limiter depend on.
type Acquirer interface {
	Acquire(ctx context.Context) (Conn, bool)
}
