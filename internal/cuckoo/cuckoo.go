package cuckoo

import (
	"encoding/binary"
	"fmt"

	"github.com/hypercache-labs/scuckoo/internal/bits"
)

// CuckooFilter is one fixed-capacity cuckoo filter. bucket_count is always
// a power of two so that bucket addressing can mask the hash instead of
// taking a modulus.
type CuckooFilter struct {
	store            *bits.Bits
	bucketCount      uint64
	entriesPerBucket uint8
	fingerprintBits  uint8
	fpMask           uint64
	maxKicks         uint32
	itemCount        uint64
	hasher           Hasher
}

type undoEntry struct {
	bucket uint64
	slot   uint8
	prev   uint64
}

// New constructs a CuckooFilter sized so that bucketCount*EntriesPerBucket
// is the smallest power-of-two-bucketed capacity >= Config.Capacity.
func New(cfg Config) (*CuckooFilter, error) {
	if cfg.FingerprintBits == 0 || cfg.FingerprintBits > 64 {
		return nil, &Error{Op: "new", Message: fmt.Sprintf("fingerprint_bitwidth %d out of range [1, 64]", cfg.FingerprintBits)}
	}
	if cfg.EntriesPerBucket == 0 {
		return nil, &Error{Op: "new", Message: "entries_per_bucket must be >= 1"}
	}
	if cfg.Capacity == 0 {
		return nil, &Error{Op: "new", Message: "capacity must be > 0"}
	}
	if cfg.Hasher == nil {
		return nil, &Error{Op: "new", Message: "hasher is required"}
	}

	maxKicks := cfg.MaxKicks
	if maxKicks == 0 {
		maxKicks = DefaultMaxKicks
	}

	bucketsNeeded := (cfg.Capacity + uint64(cfg.EntriesPerBucket) - 1) / uint64(cfg.EntriesPerBucket)
	bucketCount := nextPowerOfTwo(bucketsNeeded)
	if bucketCount == 0 {
		bucketCount = 1
	}

	store, err := bits.New(bucketCount*uint64(cfg.EntriesPerBucket), cfg.FingerprintBits)
	if err != nil {
		return nil, &Error{Op: "new", Message: err.Error()}
	}

	var fpMask uint64
	if cfg.FingerprintBits == 64 {
		fpMask = ^uint64(0)
	} else {
		fpMask = (uint64(1) << cfg.FingerprintBits) - 1
	}

	return &CuckooFilter{
		store:            store,
		bucketCount:      bucketCount,
		entriesPerBucket: cfg.EntriesPerBucket,
		fingerprintBits:  cfg.FingerprintBits,
		fpMask:           fpMask,
		maxKicks:         maxKicks,
		hasher:           cfg.Hasher,
	}, nil
}

// Len returns the number of non-empty cells (item_count).
func (c *CuckooFilter) Len() uint64 { return c.itemCount }

// BucketCount returns n, the number of buckets (always a power of two).
func (c *CuckooFilter) BucketCount() uint64 { return c.bucketCount }

// Capacity returns the filter's nominal capacity, n*b.
func (c *CuckooFilter) Capacity() uint64 {
	return c.bucketCount * uint64(c.entriesPerBucket)
}

// Bits returns the total storage size in bits, n*b*f.
func (c *CuckooFilter) Bits() uint64 {
	return c.Capacity() * uint64(c.fingerprintBits)
}

// FingerprintBits returns f.
func (c *CuckooFilter) FingerprintBits() uint8 { return c.fingerprintBits }

// NonZeroCellCount scans the backing store and counts non-empty cells
// directly, independent of the itemCount bookkeeping. Tests use it to
// cross-check item_count against the physical bucket contents.
func (c *CuckooFilter) NonZeroCellCount() uint64 {
	return c.store.PopCountNonZero()
}

// Contains reports whether the item hash h might be present. It never
// mutates the filter.
func (c *CuckooFilter) Contains(h uint64) bool {
	fp := c.fingerprint(h)
	i1 := c.index1(h)
	i2 := c.index2(i1, fp)
	return c.bucketHas(i1, fp) || c.bucketHas(i2, fp)
}

// Insert stores the item hash h. It returns (true, nil) if the item was
// newly stored, (false, nil) if an equal fingerprint was already present
// in one of the two candidate buckets, or (false, ErrFull) if the
// eviction chain exceeded MaxKicks — in which case the filter's bucket
// contents are restored to exactly what they were before the call.
func (c *CuckooFilter) Insert(h uint64, rng RNG) (bool, error) {
	fp := c.fingerprint(h)
	i1 := c.index1(h)
	i2 := c.index2(i1, fp)

	if c.bucketHas(i1, fp) || c.bucketHas(i2, fp) {
		return false, nil
	}

	if slot, ok := c.firstEmptySlot(i1); ok {
		c.setSlot(i1, slot, fp)
		c.itemCount++
		return true, nil
	}
	if slot, ok := c.firstEmptySlot(i2); ok {
		c.setSlot(i2, slot, fp)
		c.itemCount++
		return true, nil
	}

	return c.evictAndInsert(i1, i2, fp, rng)
}

// evictAndInsert runs the bounded random-eviction chain: repeatedly kick
// a random slot's occupant out and try to place it in its alternate
// bucket. On failure it replays the undo log backward so the filter's
// bucket contents are byte-identical to before the call.
func (c *CuckooFilter) evictAndInsert(i1, i2, fp uint64, rng RNG) (bool, error) {
	bucket := i1
	if rng.Uint64()&1 == 1 {
		bucket = i2
	}
	carry := fp

	var undo []undoEntry
	for kicks := uint32(0); kicks < c.maxKicks; kicks++ {
		slot := uint8(rng.Uint64() % uint64(c.entriesPerBucket))
		prev := c.getSlot(bucket, slot)
		undo = append(undo, undoEntry{bucket: bucket, slot: slot, prev: prev})
		c.setSlot(bucket, slot, carry)
		carry = prev
		bucket = c.index2(bucket, carry)

		if emptySlot, ok := c.firstEmptySlot(bucket); ok {
			c.setSlot(bucket, emptySlot, carry)
			c.itemCount++
			return true, nil
		}
	}

	for i := len(undo) - 1; i >= 0; i-- {
		e := undo[i]
		c.setSlot(e.bucket, e.slot, e.prev)
	}
	return false, ErrFull
}

func (c *CuckooFilter) fingerprint(h uint64) uint64 {
	fp := (h >> 32) & c.fpMask
	if fp == 0 {
		fp = 1
	}
	return fp
}

func (c *CuckooFilter) index1(h uint64) uint64 {
	return h & (c.bucketCount - 1)
}

func (c *CuckooFilter) index2(i, fp uint64) uint64 {
	return (i ^ c.altHash(fp)) & (c.bucketCount - 1)
}

func (c *CuckooFilter) altHash(fp uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], fp)
	return c.hasher.Hash(buf[:])
}

func (c *CuckooFilter) cellIndex(bucket uint64, slot uint8) uint64 {
	return bucket*uint64(c.entriesPerBucket) + uint64(slot)
}

func (c *CuckooFilter) getSlot(bucket uint64, slot uint8) uint64 {
	return c.store.Get(c.cellIndex(bucket, slot))
}

func (c *CuckooFilter) setSlot(bucket uint64, slot uint8, v uint64) {
	c.store.Set(c.cellIndex(bucket, slot), v)
}

func (c *CuckooFilter) bucketHas(bucket uint64, fp uint64) bool {
	for s := uint8(0); s < c.entriesPerBucket; s++ {
		if c.getSlot(bucket, s) == fp {
			return true
		}
	}
	return false
}

func (c *CuckooFilter) firstEmptySlot(bucket uint64) (uint8, bool) {
	for s := uint8(0); s < c.entriesPerBucket; s++ {
		if c.getSlot(bucket, s) == 0 {
			return s, true
		}
	}
	return 0, false
}

func nextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
