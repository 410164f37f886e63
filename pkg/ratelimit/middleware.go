package ratelimit

import (
	"net/http"
	"strconv"
)

// MiddlewareOptions controls the HTTP adapter around Limiter.Check.
type MiddlewareOptions struct {
	// TrustProxy enables identifier derivation from proxy headers; leave
	// false unless a trusted proxy terminates client connections.
	TrustProxy bool

	// KeyFn overrides identifier derivation entirely (for example, to key
	// by API token instead of client address).
	KeyFn func(r *http.Request) string
}

// Middleware wraps next with a rate-limit check under cfg, answering 429
// with a Retry-After header on denial and standard X-RateLimit headers
// otherwise. It is a pure adapter over Check and inherits its total,
// never-failing contract.
func Middleware(l *Limiter, cfg Config, opts MiddlewareOptions) func(next http.Handler) http.Handler {
	keyFn := opts.KeyFn
	if keyFn == nil {
		keyFn = func(r *http.Request) string {
			return ClientIdentifier(r, opts.TrustProxy)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.Check(r.Context(), keyFn(r), cfg)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
