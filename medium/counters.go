package medium

import "sync/atomic"

// Counters is a snapshot of the operations a store has served.
type Counters struct {
	Reads     uint64 `json:"reads"`
	Writes    uint64 `json:"writes"`
	Disposals uint64 `json:"disposals"`
	Refusals  uint64 `json:"refusals"`
}

type counters struct {
	reads     atomic.Uint64
	writes    atomic.Uint64
	disposals atomic.Uint64
	refusals  atomic.Uint64
}

// Counters returns a snapshot of the counters.
func (c *counters) Counters() Counters {
	return Counters{
		Reads:     c.reads.Load(),
		Writes:    c.writes.Load(),
		Disposals: c.disposals.Load(),
		Refusals:  c.refusals.Load(),
	}
}

// canDispose answers CanDispose for both stores.
func (c *counters) canDispose(r *Record) bool {
	if r.IsPinned() {
		c.refusals.Add(1)
		return false
	}

	return true
}
