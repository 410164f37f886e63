package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oakline/planshare-coord/pkg/coord"
	"github.com/oakline/planshare-coord/pkg/localstore"
)

const (
	defaultPrefix  = "cache:"
	defaultTimeout = 5 * time.Second
)

// Cache is the two-tier facade. Construct with New; the zero value is not
// usable.
type Cache struct {
	acc     coord.Acquirer
	local   *localstore.Store
	prefix  string
	timeout time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix sets the key namespace (default "cache:").
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

// WithTimeout sets the per-operation deadline for Redis calls (default 5s).
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

// New constructs a Cache over the given accessor and local store.
func New(acc coord.Acquirer, local *localstore.Store, opts ...Option) *Cache {
	c := &Cache{
		acc:     acc,
		local:   local,
		prefix:  defaultPrefix,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) key(key string) string {
	return c.prefix + key
}

// Get reads key into dest (a pointer), trying Redis first and falling back
// to the local store. It reports whether a value was found.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if conn, ok := c.acc.Acquire(ctx); ok {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		raw, err := conn.Get(opCtx, c.key(key)).Result()
		cancel()
		switch {
		case err == nil:
			if uerr := json.Unmarshal([]byte(raw), dest); uerr == nil {
				remoteHits.Inc()
				return true
			}
			slog.Error("cache remote decode failed", "op", "get", "key", key)
		case err == redis.Nil:
			// Fall through: a write made while the store was down may
			// only exist in the local mirror.
			remoteMisses.Inc()
		default:
			slog.Error("cache remote read failed", "op", "get", "key", key, "err", err)
			localFallbacks.Inc()
		}
	}
	return c.GetLocal(key, dest)
}

// Set stores value under key for ttl: always in the local mirror, and
// best-effort in Redis. A remote failure is logged and swallowed; the local
// mirror already satisfies this process's read-your-write contract. The
// only returned error is a value that cannot be JSON-encoded.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.local.Set(c.key(key), encoded, ttl)

	if conn, ok := c.acc.Acquire(ctx); ok {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := conn.Set(opCtx, c.key(key), encoded, ttl).Err()
		cancel()
		if err != nil {
			slog.Error("cache remote write failed", "op", "set", "key", key, "err", err)
		}
	}
	return nil
}

// Delete removes key from both backends. A remote failure is logged, not
// surfaced.
func (c *Cache) Delete(ctx context.Context, key string) {
	c.local.Delete(c.key(key))

	if conn, ok := c.acc.Acquire(ctx); ok {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := conn.Del(opCtx, c.key(key)).Err()
		cancel()
		if err != nil {
			slog.Error("cache remote delete failed", "op", "delete", "key", key, "err", err)
		}
	}
}

// Has reports whether key is present in either backend.
func (c *Cache) Has(ctx context.Context, key string) bool {
	if conn, ok := c.acc.Acquire(ctx); ok {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		n, err := conn.Exists(opCtx, c.key(key)).Result()
		cancel()
		if err == nil {
			if n > 0 {
				return true
			}
		} else {
			slog.Error("cache remote exists failed", "op", "has", "key", key, "err", err)
		}
	}
	return c.local.Has(c.key(key))
}

// GetOrSet returns the cached value for key into dest, or invokes factory,
// stores its result for ttl, and decodes it into dest. The factory runs
// exactly once per call site on a miss; two processes racing on a cold key
// may both invoke it, and the second writer wins. A factory error is
// returned without caching anything.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest any, ttl time.Duration, factory func() (any, error)) error {
	if c.Get(ctx, key, dest) {
		return nil
	}

	value, err := factory()
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		return err
	}

	// Round-trip through JSON so dest sees exactly what a later Get would.
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dest)
}

// DeletePattern best-effort bulk-deletes remote keys matching pattern (a
// Redis glob, relative to the cache prefix) and returns the count removed.
// The local store does not support pattern scans and is untouched. Returns
// 0 when the store is unavailable.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) int {
	conn, ok := c.acc.Acquire(ctx)
	if !ok {
		return 0
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	keys, err := conn.Keys(opCtx, c.key(pattern)).Result()
	if err != nil {
		slog.Error("cache remote scan failed", "op", "deletePattern", "pattern", pattern, "err", err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	n, err := conn.Del(opCtx, keys...).Result()
	if err != nil {
		slog.Error("cache remote bulk delete failed", "op", "deletePattern", "pattern", pattern, "err", err)
		return 0
	}
	return int(n)
}

// GetLocal reads key from the local store only, without network I/O.
func (c *Cache) GetLocal(key string, dest any) bool {
	raw, ok := c.local.Get(c.key(key))
	if !ok {
		localMisses.Inc()
		return false
	}
	encoded, ok := raw.([]byte)
	if !ok {
		return false
	}
	if err := json.Unmarshal(encoded, dest); err != nil {
		return false
	}
	localHits.Inc()
	return true
}

// SetLocal writes key to the local store only, without network I/O.
func (c *Cache) SetLocal(key string, value any, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.local.Set(c.key(key), encoded, ttl)
	return nil
}

// DeleteLocal removes key from the local store only.
func (c *Cache) DeleteLocal(key string) bool {
	return c.local.Delete(c.key(key))
}

// HasLocal reports whether key is present in the local store.
func (c *Cache) HasLocal(key string) bool {
	return c.local.Has(c.key(key))
}
