package cache

import "github.com/sarchlab/mediumcache/hooking"

// Hook positions that caches report. The Item of the HookCtx is the key
// involved, or nil for HookPosFlush. The Detail is the value when there is
// one.
var (
	HookPosHit         = &hooking.HookPos{Name: "CacheHit"}
	HookPosMiss        = &hooking.HookPos{Name: "CacheMiss"}
	HookPosRefresh     = &hooking.HookPos{Name: "CacheRefresh"}
	HookPosEvict       = &hooking.HookPos{Name: "CacheEvict"}
	HookPosRefuse      = &hooking.HookPos{Name: "CacheRefuse"}
	HookPosWriteBack   = &hooking.HookPos{Name: "CacheWriteBack"}
	HookPosDispose     = &hooking.HookPos{Name: "CacheDispose"}
	HookPosDelete      = &hooking.HookPos{Name: "CacheDelete"}
	HookPosFlush       = &hooking.HookPos{Name: "CacheFlush"}
	HookPosPassThrough = &hooking.HookPos{Name: "CachePassThrough"}
)

// AllHookPoses lists every position a cache can report, in a stable order.
var AllHookPoses = []*hooking.HookPos{
	HookPosHit,
	HookPosMiss,
	HookPosRefresh,
	HookPosEvict,
	HookPosRefuse,
	HookPosWriteBack,
	HookPosDispose,
	HookPosDelete,
	HookPosFlush,
	HookPosPassThrough,
}

// A Reporter invokes hooks on behalf of a cache. The zero value is not
// usable. Embed it with NewReporter.
type Reporter struct {
	hooking.HookableBase

	domain hooking.Hookable
}

// NewReporter creates a Reporter whose hook contexts name domain as their
// Domain.
func NewReporter(domain hooking.Hookable) *Reporter {
	return &Reporter{domain: domain}
}

// Report invokes the hooks with an event. It does nothing on a nil Reporter or
// if no hook is attached.
func (r *Reporter) Report(pos *hooking.HookPos, key, value interface{}) {
	if r == nil || r.NumHooks() == 0 {
		return
	}

	r.InvokeHook(hooking.HookCtx{
		Domain: r.domain,
		Pos:    pos,
		Item:   key,
		Detail: value,
	})
}
