package ratelimit

import (
	"time"
)

// fixedWindow is the coarse per-identifier counter used when the
// coordination store is unreachable. Boundary bursts are possible; that is
// an accepted approximation for the degraded path only.
type fixedWindow struct {
	Count   int
	ResetAt time.Time
}

// checkLocal runs the fixed-window fallback against the local store.
func (l *Limiter) checkLocal(identifier string, cfg Config) Result {
	key := cfg.key(identifier)
	now := l.now()

	l.localMu.Lock()
	defer l.localMu.Unlock()

	var win fixedWindow
	if v, ok := l.local.Get(key); ok {
		if w, ok := v.(fixedWindow); ok {
			win = w
		}
	}

	if win.Count == 0 || now.After(win.ResetAt) {
		win = fixedWindow{Count: 1, ResetAt: now.Add(cfg.Window)}
		l.local.Set(key, win, cfg.Window)
		remaining := cfg.MaxRequests - 1
		if remaining < 0 {
			remaining = 0
		}
		return Result{
			Allowed:   true,
			Remaining: remaining,
			Limit:     cfg.MaxRequests,
			ResetTime: win.ResetAt,
		}
	}

	if win.Count < cfg.MaxRequests {
		win.Count++
		l.local.Set(key, win, win.ResetAt.Sub(now))
		remaining := cfg.MaxRequests - win.Count
		if remaining < 0 {
			remaining = 0
		}
		return Result{
			Allowed:   true,
			Remaining: remaining,
			Limit:     cfg.MaxRequests,
			ResetTime: win.ResetAt,
		}
	}

	ra := retryAfter(win.ResetAt.Sub(now))
	return Result{
		Allowed:    false,
		Remaining:  0,
		Limit:      cfg.MaxRequests,
		ResetTime:  win.ResetAt,
		RetryAfter: ra,
	}
}
