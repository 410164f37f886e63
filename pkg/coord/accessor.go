package coord

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Config controls how the Accessor reaches the coordination store.
type Config struct {
	// URL is a redis connection URL ("redis://host:port/db"). Empty means
	// no coordination store is configured and the process runs in
	// local-fallback mode for its whole lifetime.
	URL string

	// ConnectTimeout bounds a single dial (including the Ping handshake).
	ConnectTimeout time.Duration

	// MaxRetries is the number of failed dials tolerated before the
	// Accessor stops trying for the rest of the process lifetime.
	MaxRetries int
}

const (
	defaultConnectTimeout = 5 * time.Second
	defaultMaxRetries     = 5

	backoffStep = 100 * time.Millisecond
	backoffCap  = 3 * time.Second
)

// Accessor hands out a single shared Conn per process.
//
// Safe for concurrent use. Only one dial is ever in flight at a time;
// concurrent callers during a dial all receive its outcome.
type Accessor struct {
	cfg Config

	mu        sync.Mutex
	conn      Conn
	failures  int
	exhausted bool
	nextDial  time.Time

	group    singleflight.Group
	warnOnce sync.Once

	// test seams
	dial func(ctx context.Context, url string) (Conn, error)
	now  func() time.Time
}

// New constructs an Accessor. No connection is attempted until Acquire.
func New(cfg Config) *Accessor {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Accessor{
		cfg:  cfg,
		dial: dialRedis,
		now:  time.Now,
	}
}

func dialRedis(ctx context.Context, url string) (Conn, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// Acquire returns the shared connection, dialing it first if needed.
//
// The second return is false when the store is unavailable: not configured,
// still inside a backoff window after a failed dial, or permanently given
// up after MaxRetries failures. Acquire never returns an error; a transient
// failure just means this call reports unavailable and a later call may
// retry.
func (a *Accessor) Acquire(ctx context.Context) (Conn, bool) {
	if a.cfg.URL == "" {
		a.warnOnce.Do(func() {
			slog.Warn("no coordination store configured, running in local-fallback mode")
		})
		return nil, false
	}

	a.mu.Lock()
	if a.conn != nil {
		conn := a.conn
		a.mu.Unlock()
		return conn, true
	}
	if a.exhausted || a.now().Before(a.nextDial) {
		a.mu.Unlock()
		return nil, false
	}
	a.mu.Unlock()

	// Single-flight: concurrent callers share one dial and its outcome.
	v, err, _ := a.group.Do("dial", func() (interface{}, error) {
		// A previous flight may have just connected.
		a.mu.Lock()
		if a.conn != nil {
			conn := a.conn
			a.mu.Unlock()
			return conn, nil
		}
		a.mu.Unlock()

		dialCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ConnectTimeout)
		defer cancel()

		conn, err := a.dial(dialCtx, a.cfg.URL)

		a.mu.Lock()
		defer a.mu.Unlock()
		if err != nil {
			a.failures++
			connectFailures.Inc()
			a.nextDial = a.now().Add(dialBackoff(a.failures))
			if a.failures >= a.cfg.MaxRetries {
				a.exhausted = true
				slog.Error("coordination store unreachable, giving up for process lifetime",
					"failures", a.failures, "err", err)
			} else {
				slog.Warn("coordination store dial failed",
					"attempt", a.failures, "err", err)
			}
			return nil, err
		}
		a.conn = conn
		a.failures = 0
		connectSuccesses.Inc()
		return conn, nil
	})
	if err != nil {
		return nil, false
	}
	return v.(Conn), true
}

// Release closes the shared connection and resets the dial state, so a
// later Acquire re-establishes a fresh connection. Intended for process
// shutdown, never mid-request.
func (a *Accessor) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			slog.Error("closing coordination store connection", "err", err)
		}
		a.conn = nil
	}
	a.failures = 0
	a.exhausted = false
	a.nextDial = time.Time{}
}

// dialBackoff is linear with a hard cap: 100ms, 200ms, ... up to 3s.
func dialBackoff(failures int) time.Duration {
	d := time.Duration(failures) * backoffStep
	if d > backoffCap {
		d = backoffCap
	}
	return d
}
