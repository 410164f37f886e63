package localstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var storeEvictions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planshare_localstore_evictions",
	Help: "Number of entries evicted from the local store to stay under capacity",
})

var storeSize = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "planshare_localstore_entries",
	Help: "Number of entries currently held by the local store",
})

var sweepRemovals = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planshare_localstore_sweep_removals",
	Help: "Number of expired entries removed by janitor sweeps",
})
