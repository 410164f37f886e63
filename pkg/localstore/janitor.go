package localstore

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepPeriod is how often the Janitor sweeps when no period is
// given. Lazy expiry alone leaks memory under write-heavy, read-light
// workloads; the sweep reclaims entries that expired without being read.
const DefaultSweepPeriod = 5 * time.Minute

// Janitor periodically purges expired entries from a Store.
//
// It is an explicit lifecycle object: whoever initializes the store starts
// it once and stops it at shutdown, so tests never leak timers.
type Janitor struct {
	store  *Store
	period time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewJanitor constructs a Janitor sweeping store every period. period <= 0
// selects DefaultSweepPeriod.
func NewJanitor(store *Store, period time.Duration) *Janitor {
	if period <= 0 {
		period = DefaultSweepPeriod
	}
	return &Janitor{
		store:  store,
		period: period,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the sweep loop. Calling Start more than once is a no-op.
func (j *Janitor) Start() {
	j.startOnce.Do(func() {
		go j.run()
	})
}

// Stop terminates the sweep loop and waits for it to exit. Safe to call
// multiple times; safe even if Start was never called.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
	})
	j.startOnce.Do(func() {
		close(j.done) // never started; unblock the wait below
	})
	<-j.done
}

func (j *Janitor) run() {
	defer close(j.done)

	t := time.NewTicker(j.period)
	defer t.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-t.C:
			removed := j.store.PurgeExpired()
			sweepRemovals.Add(float64(removed))
			slog.Debug("local store sweep", "removed", removed)
		}
	}
}
