package coord

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var connectSuccesses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planshare_coord_connect_successes",
	Help: "Number of successful coordination store dials",
})

var connectFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planshare_coord_connect_failures",
	Help: "Number of failed coordination store dials",
})
