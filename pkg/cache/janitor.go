package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSweepInterval is the period between background cleanup sweeps.
const DefaultSweepInterval = 10 * time.Minute

// Sweeper is any component holding expirable in-memory state that the
// janitor can sweep. Cleanup must only scan and delete entries; it must
// not block on I/O.
type Sweeper interface {
	Cleanup() int
}

// Janitor periodically sweeps expired state from one or more Sweepers
// (typically the cache store and the rate limiter).
//
// The janitor has an explicit Start/Stop lifecycle so tests can drive
// sweeps deterministically instead of depending on wall-clock timing.
type Janitor struct {
	interval time.Duration
	sweepers []Sweeper
	logger   zerolog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewJanitor creates a janitor sweeping the given sweepers every interval.
// A non-positive interval falls back to DefaultSweepInterval.
func NewJanitor(interval time.Duration, logger zerolog.Logger, sweepers ...Sweeper) *Janitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Janitor{
		interval: interval,
		sweepers: sweepers,
		logger:   logger,
	}
}

// Start launches the background sweep loop. Calling Start on a running
// janitor is a no-op.
func (j *Janitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.stop != nil {
		return
	}
	j.stop = make(chan struct{})
	j.done = make(chan struct{})

	go j.run(j.stop, j.done)

	j.logger.Debug().
		Dur("interval", j.interval).
		Int("sweepers", len(j.sweepers)).
		Msg("Cache janitor started")
}

// Stop halts the sweep loop and waits for it to exit. Calling Stop on a
// stopped janitor is a no-op.
func (j *Janitor) Stop() {
	j.mu.Lock()
	stop, done := j.stop, j.done
	j.stop, j.done = nil, nil
	j.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	j.logger.Debug().Msg("Cache janitor stopped")
}

// Sweep runs one cleanup pass over all sweepers immediately and returns
// the total number of evicted entries.
func (j *Janitor) Sweep() int {
	total := 0
	for _, s := range j.sweepers {
		total += s.Cleanup()
	}
	if total > 0 {
		j.logger.Debug().
			Int("evicted", total).
			Msg("Sweep evicted expired entries")
	}
	return total
}

func (j *Janitor) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.Sweep()
		case <-stop:
			return
		}
	}
}
