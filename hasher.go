package scuckoo

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"

	"github.com/cespare/xxhash/v2"

	"github.com/hypercache-labs/scuckoo/internal/cuckoo"
)

// Hasher produces a deterministic 64-bit hash from an opaque item. The
// same Hasher instance derives both an item's hash and, internally to
// each cuckoo filter, a fingerprint's alternate-bucket rehash, so a
// custom Hasher must be stable for the life of the filter it is attached
// to.
type Hasher = cuckoo.Hasher

// RNG produces uniform 64-bit words, consulted only during Insert's
// eviction path.
type RNG = cuckoo.RNG

// xxHasher is the default Hasher: github.com/cespare/xxhash/v2, a fast
// non-cryptographic hash with no configurable seed, giving every
// ScalableCuckooFilter built with NewBuilder's defaults deterministic,
// reproducible bucket/fingerprint derivation.
type xxHasher struct{}

func (xxHasher) Hash(data []byte) uint64 { return xxhash.Sum64(data) }

// NewXXHasher returns the default Hasher implementation.
func NewXXHasher() Hasher { return xxHasher{} }

// cryptoRNG draws eviction randomness from crypto/rand.
type cryptoRNG struct{}

func (cryptoRNG) Uint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read on the standard reader does not fail in
		// practice; a zero word only ever biases a single eviction
		// decision, never corrupts filter state.
		return 0
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// NewCryptoRNG returns the default, non-reproducible RNG implementation.
func NewCryptoRNG() RNG { return cryptoRNG{} }

// seededRNG wraps math/rand with a fixed seed so property tests and
// determinism tests can reproduce an identical eviction sequence across
// two filter instances.
type seededRNG struct{ r *mrand.Rand }

// NewSeededRNG returns a deterministic RNG seeded with seed. Two
// ScalableCuckooFilters built with the same Hasher and the same seeded
// RNG, fed the same insert sequence, produce byte-identical bit stores.
func NewSeededRNG(seed uint64) RNG {
	return &seededRNG{r: mrand.New(mrand.NewSource(int64(seed)))}
}

func (s *seededRNG) Uint64() uint64 { return s.r.Uint64() }
