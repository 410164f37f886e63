package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var remoteHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planshare_cache_remote_hits",
	Help: "Number of cache reads answered by the coordination store",
})

var remoteMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planshare_cache_remote_misses",
	Help: "Number of cache reads the coordination store had no value for",
})

var localHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planshare_cache_local_hits",
	Help: "Number of cache reads answered by the local mirror",
})

var localMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planshare_cache_local_misses",
	Help: "Number of cache reads that missed the local mirror",
})

var localFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planshare_cache_local_fallbacks",
	Help: "Number of cache reads degraded to the local mirror by a remote error",
})
