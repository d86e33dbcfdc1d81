package setassoc

import (
	"encoding/binary"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// A Hasher maps a key to a 64-bit hash. Equal keys must hash equally.
type Hasher[K comparable] func(key K) uint64

// DefaultHasher returns a hasher that agrees with Go equality. Strings and
// integers are hashed from their bytes with xxhash. Other keys go through
// maphash.Comparable, so pointers hash by address and 0.0 hashes like -0.0.
// Each hasher draws its own seed, so hashes are only stable within one
// hasher.
func DefaultHasher[K comparable]() Hasher[K] {
	seed := maphash.MakeSeed()

	return func(key K) uint64 {
		if h, ok := hashBytes(key); ok {
			return h
		}

		return maphash.Comparable(seed, key)
	}
}

func hashBytes(key any) (uint64, bool) {
	switch k := key.(type) {
	case string:
		return xxhash.Sum64String(k), true
	case int:
		return hashUint64(uint64(k)), true
	case int32:
		return hashUint64(uint64(k)), true
	case int64:
		return hashUint64(uint64(k)), true
	case uint:
		return hashUint64(uint64(k)), true
	case uint32:
		return hashUint64(uint64(k)), true
	case uint64:
		return hashUint64(k), true
	default:
		return 0, false
	}
}

func hashUint64(v uint64) uint64 {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], v)

	return xxhash.Sum64(buf[:])
}
