package tracing

import (
	"sync"

	"github.com/sarchlab/mediumcache/cache"
	"github.com/sarchlab/mediumcache/hooking"
)

// Stats is a snapshot of the events counted by a StatsTracer.
type Stats struct {
	Hits         uint64  `json:"hits"`
	Misses       uint64  `json:"misses"`
	Refreshes    uint64  `json:"refreshes"`
	Evictions    uint64  `json:"evictions"`
	Refusals     uint64  `json:"refusals"`
	WriteBacks   uint64  `json:"write_backs"`
	Disposals    uint64  `json:"disposals"`
	Deletes      uint64  `json:"deletes"`
	Flushes      uint64  `json:"flushes"`
	PassThroughs uint64  `json:"pass_throughs"`
	HitRatio     float64 `json:"hit_ratio"`
}

// StatsTracer counts cache events by position. It is safe to attach the same
// StatsTracer to several caches.
type StatsTracer struct {
	lock   sync.Mutex
	counts map[*hooking.HookPos]uint64
}

// NewStatsTracer creates a new StatsTracer.
func NewStatsTracer() *StatsTracer {
	return &StatsTracer{
		counts: make(map[*hooking.HookPos]uint64),
	}
}

// Func counts the event.
func (t *StatsTracer) Func(ctx hooking.HookCtx) {
	t.lock.Lock()
	t.counts[ctx.Pos]++
	t.lock.Unlock()
}

// Count returns the number of events seen at a position.
func (t *StatsTracer) Count(pos *hooking.HookPos) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.counts[pos]
}

// Reset sets every counter back to zero.
func (t *StatsTracer) Reset() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.counts = make(map[*hooking.HookPos]uint64)
}

// Stats returns a snapshot of the counters. A refresh counts as a hit, since
// the key was resident. The hit ratio is 0 before the first lookup.
func (t *StatsTracer) Stats() Stats {
	t.lock.Lock()
	defer t.lock.Unlock()

	s := Stats{
		Hits:         t.counts[cache.HookPosHit],
		Misses:       t.counts[cache.HookPosMiss],
		Refreshes:    t.counts[cache.HookPosRefresh],
		Evictions:    t.counts[cache.HookPosEvict],
		Refusals:     t.counts[cache.HookPosRefuse],
		WriteBacks:   t.counts[cache.HookPosWriteBack],
		Disposals:    t.counts[cache.HookPosDispose],
		Deletes:      t.counts[cache.HookPosDelete],
		Flushes:      t.counts[cache.HookPosFlush],
		PassThroughs: t.counts[cache.HookPosPassThrough],
	}

	resident := s.Hits + s.Refreshes
	if lookups := resident + s.Misses; lookups > 0 {
		s.HitRatio = float64(resident) / float64(lookups)
	}

	return s
}
