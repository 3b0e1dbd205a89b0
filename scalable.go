package scuckoo

import (
	"math"

	"github.com/hypercache-labs/scuckoo/internal/cuckoo"
	"github.com/hypercache-labs/scuckoo/internal/logging"
)

// ScalableCuckooFilter is an ordered stack of fixed-capacity cuckoo
// filters. It is not safe for concurrent use: callers that need
// concurrent access must provide their own synchronization (e.g. a
// reader-writer lock with readers on Contains, exclusive on Insert and
// ShrinkToFit).
type ScalableCuckooFilter struct {
	filters []*cuckoo.CuckooFilter

	initialCapacityHint uint64
	fpp                 float64
	entriesPerBucket    uint8
	growthFactor        uint64
	tighteningRatio     float64
	maxKicks            uint32

	hasher Hasher
	rng    RNG

	logger         *logging.Logger
	metricsEnabled bool
	name           string

	grows       uint64
	compactions uint64
}

// New builds a ScalableCuckooFilter with NewBuilder's defaults.
func New(initialCapacity uint64, falsePositiveProbability float64) (*ScalableCuckooFilter, error) {
	return NewBuilder(initialCapacity, falsePositiveProbability).Build()
}

// Insert stores item, growing the stack if the active filter is full.
// It always succeeds for well-formed input: the only failure path is a
// freshly appended filter refusing the single item it was sized for,
// which should not occur once the growth factor is at least 2.
func (s *ScalableCuckooFilter) Insert(item []byte) error {
	h := s.hasher.Hash(item)
	active := s.filters[len(s.filters)-1]

	if _, err := active.Insert(h, s.rng); err == nil {
		s.observeInsert()
		return nil
	}

	next, err := s.grow()
	if err != nil {
		return err
	}

	if _, err := next.Insert(h, s.rng); err != nil {
		return hardInsertError(cuckoo.ErrFull, err)
	}
	s.observeInsert()
	return nil
}

// Contains reports whether item might be a member. It hashes the item
// once and queries every filter in the stack with that shared hash,
// returning true on the first hit.
func (s *ScalableCuckooFilter) Contains(item []byte) bool {
	h := s.hasher.Hash(item)
	for _, f := range s.filters {
		if f.Contains(h) {
			return true
		}
	}
	return false
}

// Len returns the total number of stored fingerprints across the stack,
// including any cross-filter duplicates left behind by an item that was
// already present in an older filter when it was re-inserted into the
// active one.
func (s *ScalableCuckooFilter) Len() uint64 {
	var n uint64
	for _, f := range s.filters {
		n += f.Len()
	}
	return n
}

// IsEmpty reports whether the filter holds no items.
func (s *ScalableCuckooFilter) IsEmpty() bool { return s.Len() == 0 }

// Capacity returns the sum of the nominal capacities (n*b) of every
// filter in the stack. It is non-decreasing under Insert and only ever
// shrinks via ShrinkToFit.
func (s *ScalableCuckooFilter) Capacity() uint64 {
	var n uint64
	for _, f := range s.filters {
		n += f.Capacity()
	}
	return n
}

// Bits returns the sum of the total storage bits (n*b*f) of every filter
// in the stack.
func (s *ScalableCuckooFilter) Bits() uint64 {
	var n uint64
	for _, f := range s.filters {
		n += f.Bits()
	}
	return n
}

// FilterCount returns how many individual cuckoo filters currently make
// up the stack.
func (s *ScalableCuckooFilter) FilterCount() int { return len(s.filters) }

// Stats is a snapshot of the stack's aggregate shape: size, capacity,
// memory footprint, and lifetime grow/compaction counters.
type Stats struct {
	Size        uint64
	Capacity    uint64
	MemoryBits  uint64
	LoadFactor  float64
	FilterCount int
	Grows       uint64
	Compactions uint64
}

// Stats returns a snapshot of the stack's current size, capacity, memory
// footprint, and lifetime grow/compaction counts.
func (s *ScalableCuckooFilter) Stats() Stats {
	size := s.Len()
	capacity := s.Capacity()
	loadFactor := 0.0
	if capacity > 0 {
		loadFactor = float64(size) / float64(capacity)
	}
	return Stats{
		Size:        size,
		Capacity:    capacity,
		MemoryBits:  s.Bits(),
		LoadFactor:  loadFactor,
		FilterCount: len(s.filters),
		Grows:       s.grows,
		Compactions: s.compactions,
	}
}

// ShrinkToFit rebuilds the stack as a single, minimally sized filter
// holding exactly the items passed in. It is a no-op on an empty filter.
// Because a cuckoo filter's cells hold only fingerprints, not the
// original items, reconstructing a smaller stack requires the caller to
// supply (or the embedding application to retain) every currently live
// item. Passing fewer items than Len() silently drops the missing ones
// from the rebuilt filter.
func (s *ScalableCuckooFilter) ShrinkToFit(items [][]byte) error {
	if s.IsEmpty() {
		return nil
	}

	target := uint64(len(items))
	if target == 0 {
		target = 1
	}

	fresh, err := s.newFilterForLevel(0, withCapacity(target))
	if err != nil {
		return err
	}
	for _, item := range items {
		h := s.hasher.Hash(item)
		if _, err := fresh.Insert(h, s.rng); err != nil {
			return &FilterError{Operation: "shrink_to_fit", Message: "rebuilt filter rejected an item", Cause: err}
		}
	}

	s.filters = []*cuckoo.CuckooFilter{fresh}
	s.compactions++
	if s.logger != nil {
		s.logger.Debugf("scuckoo[%s]: shrink_to_fit rebuilt stack to 1 filter, capacity=%d", s.name, fresh.Capacity())
	}
	s.recordMetric("compactions")
	return nil
}

func (s *ScalableCuckooFilter) observeInsert() {
	s.recordMetric("inserts")
}

// grow appends and returns a new filter for the next level in the stack.
func (s *ScalableCuckooFilter) grow() (*cuckoo.CuckooFilter, error) {
	level := len(s.filters)
	next, err := s.newFilterForLevel(level)
	if err != nil {
		return nil, err
	}
	s.filters = append(s.filters, next)
	s.grows++
	if s.logger != nil {
		s.logger.Debugf("scuckoo[%s]: grew to level %d, capacity=%d", s.name, level, next.Capacity())
	}
	s.recordMetric("grows")
	return next, nil
}

type filterOption func(*filterBuildParams)

type filterBuildParams struct {
	capacity *uint64
}

// withCapacity overrides the capacity that would otherwise be derived
// from initialCapacityHint*growthFactor^level, used by ShrinkToFit to
// size the rebuilt filter from the number of items passed to it instead.
func withCapacity(c uint64) filterOption {
	return func(p *filterBuildParams) { p.capacity = &c }
}

// newFilterForLevel constructs the k-th filter's parameters: capacity
// initialCapacityHint*growthFactor^k, per-filter false-positive budget
// falsePositiveProbability*(1-r)*r^k, and the fingerprint bitwidth that
// budget implies at this filter's entries-per-bucket.
func (s *ScalableCuckooFilter) newFilterForLevel(level int, opts ...filterOption) (*cuckoo.CuckooFilter, error) {
	params := filterBuildParams{}
	for _, opt := range opts {
		opt(&params)
	}

	capacity := s.initialCapacityHint * pow64(s.growthFactor, level)
	if params.capacity != nil {
		capacity = *params.capacity
	}
	budget := s.fpp * (1 - s.tighteningRatio) * math.Pow(s.tighteningRatio, float64(level))
	fBits := fingerprintBitsFor(budget, s.entriesPerBucket)

	cf, err := cuckoo.New(cuckoo.Config{
		FingerprintBits:  fBits,
		EntriesPerBucket: s.entriesPerBucket,
		Capacity:         capacity,
		MaxKicks:         s.maxKicks,
		Hasher:           s.hasher,
	})
	if err != nil {
		return nil, &FilterError{Operation: "grow", Message: "failed to construct next filter", Cause: err}
	}
	return cf, nil
}

// fingerprintBitsFor computes f = ceil(log2(2b/epsilon)), the smallest
// fingerprint width whose theoretical false-positive rate 2b/2^f is at
// most epsilon, clamped to the [1, 64] range cuckoo.New accepts.
func fingerprintBitsFor(epsilon float64, entriesPerBucket uint8) uint8 {
	f := math.Ceil(math.Log2(2 * float64(entriesPerBucket) / epsilon))
	if f < 1 {
		f = 1
	}
	if f > 64 {
		f = 64
	}
	return uint8(f)
}

func pow64(base uint64, exp int) uint64 {
	result := uint64(1)
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
