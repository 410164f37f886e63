package ratelimit

import (
	"fmt"
	"hash/fnv"
	"net"
	"net/http"
	"strings"
)

// ClientIdentifier derives the rate-limit key for an HTTP request.
//
// When trustProxy is set, proxy-provided headers are consulted first: the
// first hop of X-Forwarded-For (the original client), then X-Real-IP.
// Otherwise, or when no header is usable, the connection's RemoteAddr host
// is used. As a last resort, a hash of User-Agent and Accept-Language
// stands in so anonymous clients still bucket deterministically.
//
// Pure function; no shared state.
func ClientIdentifier(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	h := fnv.New64a()
	h.Write([]byte(r.UserAgent()))
	h.Write([]byte{0})
	h.Write([]byte(r.Header.Get("Accept-Language")))
	return fmt.Sprintf("anon-%x", h.Sum64())
}
