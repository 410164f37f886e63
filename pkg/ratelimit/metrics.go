package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var allowedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "planshare_ratelimit_allowed_total",
	Help: "Number of rate-limit checks that admitted the request, by backend",
}, []string{"backend"})

var deniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "planshare_ratelimit_denied_total",
	Help: "Number of rate-limit checks that denied the request, by backend",
}, []string{"backend"})

var localFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planshare_ratelimit_local_fallbacks",
	Help: "Number of checks degraded to the local fixed window by a remote error",
})
