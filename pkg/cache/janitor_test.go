package cache

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int64
}

func (c *countingSweeper) Cleanup() int {
	c.calls.Add(1)
	return 1
}

func TestJanitor_SweepRunsAllSweepers(t *testing.T) {
	a := &countingSweeper{}
	b := &countingSweeper{}
	j := NewJanitor(time.Hour, zerolog.Nop(), a, b)

	evicted := j.Sweep()
	require.Equal(t, 2, evicted)
	require.EqualValues(t, 1, a.calls.Load())
	require.EqualValues(t, 1, b.calls.Load())
}

func TestJanitor_SweepsStoreEntries(t *testing.T) {
	store := NewStore()
	store.Set("stale", []byte("v"), -time.Second)
	store.Set("fresh", []byte("v"), time.Hour)

	j := NewJanitor(time.Hour, zerolog.Nop(), store)
	require.Equal(t, 1, j.Sweep())
	require.Equal(t, 1, store.Size())
}

func TestJanitor_StartStop(t *testing.T) {
	s := &countingSweeper{}
	j := NewJanitor(10*time.Millisecond, zerolog.Nop(), s)

	j.Start()
	// Start on a running janitor is a no-op.
	j.Start()

	deadline := time.After(2 * time.Second)
	for s.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("janitor never swept")
		case <-time.After(5 * time.Millisecond):
		}
	}

	j.Stop()
	// Stop on a stopped janitor is a no-op.
	j.Stop()

	// No sweeps once stopped.
	after := s.calls.Load()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, after, s.calls.Load())
}
