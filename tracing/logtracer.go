package tracing

import (
	"log"

	"github.com/sarchlab/mediumcache/hooking"
)

// LogTracer prints one line per cache event.
type LogTracer struct {
	logger *log.Logger
	poses  map[*hooking.HookPos]bool
}

// NewLogTracer creates a LogTracer that writes to logger. If poses are given,
// only events at those positions are printed.
func NewLogTracer(logger *log.Logger, poses ...*hooking.HookPos) *LogTracer {
	t := &LogTracer{logger: logger}

	if len(poses) > 0 {
		t.poses = make(map[*hooking.HookPos]bool)
		for _, p := range poses {
			t.poses[p] = true
		}
	}

	return t
}

// Func prints the event.
func (t *LogTracer) Func(ctx hooking.HookCtx) {
	if t.poses != nil && !t.poses[ctx.Pos] {
		return
	}

	t.logger.Printf("%s %s %s\n", domainName(ctx), ctx.Pos.Name, keyString(ctx))
}
