package cache

// A Medium is the expensive side of a cache. The cache calls it to fetch
// values it does not hold, to persist values with unwritten changes, and to
// negotiate which values may leave the cache.
type Medium[K comparable, V any] interface {
	// Read fetches the current value of a key. The boolean is false if the
	// key does not exist in the medium.
	Read(key K) (V, bool, error)

	// Write persists a value back to the medium.
	Write(value V) error

	// IsDirtyMustRead returns true if the cached copy is stale and must be
	// re-read before it is handed to a caller.
	IsDirtyMustRead(value V) bool

	// IsDirtyMustWrite returns true if the cached copy has changes that have
	// not been written to the medium.
	IsDirtyMustWrite(value V) bool

	// CanDispose tells the cache whether the value may be evicted now. The
	// answer is advisory. An engine is allowed to evict a value that refused.
	CanDispose(value V) bool

	// Dispose notifies the medium that the value has left the cache.
	Dispose(value V)
}

// Retire moves a value out of a cache. A dirty value is written before it is
// disposed. If the write fails, the value is not disposed. The reporter may be
// nil.
func Retire[K comparable, V any](
	m Medium[K, V],
	r *Reporter,
	key K,
	value V,
) error {
	err := WriteIfDirty(m, r, key, value)
	if err != nil {
		return err
	}

	m.Dispose(value)
	r.Report(HookPosDispose, key, value)

	return nil
}

// WriteIfDirty writes the value if the medium says it has unwritten changes.
// The reporter may be nil.
func WriteIfDirty[K comparable, V any](
	m Medium[K, V],
	r *Reporter,
	key K,
	value V,
) error {
	if !m.IsDirtyMustWrite(value) {
		return nil
	}

	err := m.Write(value)
	if err != nil {
		return err
	}

	r.Report(HookPosWriteBack, key, value)

	return nil
}
