package cmd

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/sarchlab/mediumcache/cache"
	"github.com/sarchlab/mediumcache/cache/lru"
	"github.com/sarchlab/mediumcache/cache/setassoc"
	"github.com/sarchlab/mediumcache/medium"
	"github.com/sarchlab/mediumcache/monitoring"
	"github.com/sarchlab/mediumcache/tracing"
)

// maxPinned is the number of records a workload keeps pinned at most. The
// oldest pin is released when a new one would exceed it.
const maxPinned = 8

// Report summarizes a finished workload.
type Report struct {
	Engine   string          `json:"engine"`
	Medium   string          `json:"medium"`
	Ops      int             `json:"ops"`
	Gets     int             `json:"gets"`
	Puts     int             `json:"puts"`
	Full     int             `json:"full"`
	Elapsed  string          `json:"elapsed"`
	Stats    tracing.Stats   `json:"stats"`
	Counters medium.Counters `json:"counters"`
}

func buildCache(
	cfg Config,
	store medium.Store,
) cache.Cache[string, *medium.Record] {
	switch cfg.Engine {
	case "lru":
		return lru.MakeBuilder[string, *medium.Record]().
			WithCapacity(cfg.Capacity).
			WithMedium(store).
			Build("L1")
	case "setassoc":
		return setassoc.MakeBuilder[string, *medium.Record]().
			WithCapacity(cfg.Capacity).
			WithWays(cfg.Ways).
			WithMedium(store).
			Build("L1")
	default:
		panic("unknown engine " + cfg.Engine)
	}
}

type workload struct {
	cfg      Config
	cache    cache.Cache[string, *medium.Record]
	progress *monitoring.ProgressBar

	rng    *rand.Rand
	zipf   *rand.Zipf
	pinned []*medium.Record
	report Report
}

func newWorkload(
	cfg Config,
	c cache.Cache[string, *medium.Record],
	progress *monitoring.ProgressBar,
) *workload {
	rng := rand.New(rand.NewSource(cfg.Seed))

	return &workload{
		cfg:      cfg,
		cache:    c,
		progress: progress,
		rng:      rng,
		zipf:     rand.NewZipf(rng, cfg.Skew, 1, uint64(cfg.Keys-1)),
		report: Report{
			Engine: cfg.Engine,
			Medium: cfg.Medium,
		},
	}
}

// run replays the workload. Full caches are counted and skipped. Any other
// error stops the run.
func (w *workload) run() (Report, error) {
	start := time.Now()

	for i := 0; i < w.cfg.Ops; i++ {
		err := w.step(i)

		switch {
		case errors.Is(err, cache.ErrCacheFull):
			w.report.Full++
		case err != nil:
			return w.report, fmt.Errorf("op %d: %w", i, err)
		}

		w.report.Ops++

		if w.progress != nil {
			w.progress.IncrementFinished(1)
		}
	}

	w.unpinAll()

	w.report.Elapsed = time.Since(start).String()

	return w.report, nil
}

func (w *workload) step(i int) error {
	key := medium.KeyName(int(w.zipf.Uint64()))

	if w.rng.Float64() < w.cfg.WriteRatio {
		w.report.Puts++

		r, found, err := w.cache.Get(key)
		if err != nil {
			return err
		}

		if !found {
			r = medium.NewRecord(key, nil)
		}

		r.Set([]byte(strconv.Itoa(i)))

		return w.cache.Put(key, r)
	}

	w.report.Gets++

	r, found, err := w.cache.Get(key)
	if err != nil || !found {
		return err
	}

	if w.rng.Float64() < w.cfg.PinRatio {
		w.pin(r)
	}

	return nil
}

func (w *workload) pin(r *medium.Record) {
	if len(w.pinned) == maxPinned {
		w.pinned[0].Unpin()
		w.pinned = w.pinned[1:]
	}

	r.Pin()
	w.pinned = append(w.pinned, r)
}

func (w *workload) unpinAll() {
	for _, r := range w.pinned {
		r.Unpin()
	}

	w.pinned = nil
}
