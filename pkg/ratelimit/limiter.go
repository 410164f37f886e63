package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oakline/planshare-coord/pkg/coord"
	"github.com/oakline/planshare-coord/pkg/localstore"
)

const defaultTimeout = 5 * time.Second

// Limiter decides, per identifier and policy, whether a request is allowed.
// Construct with New.
type Limiter struct {
	acc      coord.Acquirer
	local    *localstore.Store
	timeout  time.Duration
	recorder MetricsRecorder

	// localMu serializes the read-modify-write of fixed-window counters.
	localMu sync.Mutex

	now func() time.Time // test seam
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithTimeout sets the deadline for remote check operations (default 5s).
func WithTimeout(d time.Duration) Option {
	return func(l *Limiter) { l.timeout = d }
}

// WithRecorder injects a custom metrics backend.
func WithRecorder(r MetricsRecorder) Option {
	return func(l *Limiter) { l.recorder = r }
}

// New constructs a Limiter over the given accessor and local store.
func New(acc coord.Acquirer, local *localstore.Store, opts ...Option) *Limiter {
	l := &Limiter{
		acc:      acc,
		local:    local,
		timeout:  defaultTimeout,
		recorder: &NoOpMetricsRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check decides whether one more request for identifier is admissible
// under cfg. It is total: a coordination-store failure degrades this single
// call to the fixed-window fallback rather than failing the request.
func (l *Limiter) Check(ctx context.Context, identifier string, cfg Config) Result {
	start := time.Now()
	defer func() {
		l.recorder.Observe("ratelimit.latency", time.Since(start).Seconds(), nil)
	}()
	l.recorder.Add("ratelimit.check", 1, map[string]string{"prefix": cfg.KeyPrefix})

	if conn, ok := l.acc.Acquire(ctx); ok {
		opCtx, cancel := context.WithTimeout(ctx, l.timeout)
		res, err := l.checkRemote(opCtx, conn, identifier, cfg)
		cancel()
		if err == nil {
			l.count(res, "redis")
			return res
		}
		slog.Error("rate limit remote check failed, degrading to local window",
			"op", "check", "identifier", identifier, "err", err)
		localFallbacks.Inc()
	}

	res := l.checkLocal(identifier, cfg)
	l.count(res, "local")
	return res
}

// Clear removes identifier's rate-limit state from both backends. Intended
// for tests and operator overrides.
func (l *Limiter) Clear(ctx context.Context, identifier string, cfg Config) {
	l.local.Delete(cfg.key(identifier))

	if conn, ok := l.acc.Acquire(ctx); ok {
		opCtx, cancel := context.WithTimeout(ctx, l.timeout)
		err := conn.Del(opCtx, cfg.key(identifier)).Err()
		cancel()
		if err != nil {
			slog.Error("rate limit remote clear failed",
				"op", "clear", "identifier", identifier, "err", err)
		}
	}
}

func (l *Limiter) count(res Result, backend string) {
	if res.Allowed {
		allowedTotal.WithLabelValues(backend).Inc()
	} else {
		deniedTotal.WithLabelValues(backend).Inc()
	}
}

// retryAfter rounds d up to whole seconds, at least one: callers surface it
// in Retry-After headers, which carry integral seconds.
func retryAfter(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	secs := (d + time.Second - 1) / time.Second
	return secs * time.Second
}
