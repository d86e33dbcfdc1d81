// Package cache defines the contracts of a caching engine that mediates
// between a cheap medium, the caller, and an expensive medium, the backing
// store.
//
// A Medium is what the backing store exposes: reads, writes, two dirty
// checks, and a disposal negotiation. A Cache is what the caller sees. The
// engines live in sub-packages: lru keeps a single recency order and
// negotiates every eviction, setassoc hashes keys into fixed-width sets and
// evicts round-robin without negotiation.
//
// Every engine retires a value the same way: if the medium reports it as
// dirty-must-write the value is written first, then the medium is told the
// value has been disposed.
package cache
