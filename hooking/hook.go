// Package hooking provides the instrumentation primitives that caches use to
// report what they are doing. A Hookable object keeps a list of Hooks and
// invokes each of them with a HookCtx describing the site of the event.
package hooking

import (
	"slices"
	"sync"
)

// HookPos names a site where a Hookable reports an event. Positions are
// compared by pointer, so each one is declared once as a package variable.
type HookPos struct {
	Name string
}

// HookCtx describes one reported event.
type HookCtx struct {
	// Domain is the object that reported the event.
	Domain Hookable

	// Pos is where the event happened.
	Pos *HookPos

	// Item is the subject of the event, for a cache the key.
	Item any

	// Detail carries extra data, for a cache the value if there is one.
	Detail any
}

// Hookable is implemented by objects that report events to hooks.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
	Hooks() []Hook
}

// NamedHookable is a Hookable with a name, such as a cache.
type NamedHookable interface {
	Hookable
	Name() string
}

// A Hook receives the events of the Hookables it is attached to.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// A HookableBase keeps the hooks of a Hookable. Hooks may be attached while
// other goroutines invoke them. Hooks attached during an InvokeHook call are
// first invoked by the next call. A HookableBase must not be copied after
// first use.
type HookableBase struct {
	lock     sync.RWMutex
	hookList []Hook
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return len(h.hookList)
}

// Hooks returns a copy of the registered hooks.
func (h *HookableBase) Hooks() []Hook {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return slices.Clone(h.hookList)
}

// AcceptHook registers a hook. It panics if the same hook value is already
// registered. HookFunc values are never considered duplicates.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.mustNotHaveDuplicatedHook(hook)
	h.hookList = append(h.hookList, hook)
}

func (h *HookableBase) mustNotHaveDuplicatedHook(hook Hook) {
	if _, isFunc := hook.(HookFunc); isFunc {
		return
	}

	for _, existing := range h.hookList {
		if _, isFunc := existing.(HookFunc); isFunc {
			continue
		}

		if existing == hook {
			panic("duplicated hook")
		}
	}
}

// InvokeHook calls every registered hook in registration order. The hooks
// run without the hook lock held, so a hook may attach further hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	h.lock.RLock()
	hooks := h.hookList
	h.lock.RUnlock()

	for _, hook := range hooks {
		hook.Func(ctx)
	}
}
