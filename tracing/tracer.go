// Package tracing provides hooks that observe caches. A tracer is attached
// with AcceptHook and receives every event the cache reports.
package tracing

import (
	"fmt"
	"time"

	"github.com/sarchlab/mediumcache/hooking"
)

// TimeTeller can tell the current time in seconds.
type TimeTeller interface {
	CurrentTime() float64
}

type wallClock struct {
	start time.Time
}

// NewWallClock returns a TimeTeller that counts seconds since its creation.
func NewWallClock() TimeTeller {
	return wallClock{start: time.Now()}
}

func (c wallClock) CurrentTime() float64 {
	return time.Since(c.start).Seconds()
}

// domainName returns the name of the cache that reported the event.
func domainName(ctx hooking.HookCtx) string {
	if named, ok := ctx.Domain.(hooking.NamedHookable); ok {
		return named.Name()
	}

	return ""
}

func keyString(ctx hooking.HookCtx) string {
	if ctx.Item == nil {
		return ""
	}

	return fmt.Sprint(ctx.Item)
}
