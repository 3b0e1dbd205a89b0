package scuckoo

import (
	"github.com/google/uuid"

	"github.com/hypercache-labs/scuckoo/internal/logging"
	"github.com/hypercache-labs/scuckoo/pkg/config"
)

const (
	defaultEntriesPerBucket = 4
	defaultGrowthFactor     = 2
	defaultTighteningRatio  = 0.5
	defaultMaxKicks         = 512
)

// Builder configures and constructs a ScalableCuckooFilter. The zero
// value is not usable; start from NewBuilder.
type Builder struct {
	initialCapacity  uint64
	fpp              float64
	entriesPerBucket uint8
	growthFactor     uint64
	tighteningRatio  float64
	maxKicks         uint32
	hasher           Hasher
	rng              RNG
	logger           *logging.Logger
	metricsEnabled   bool
	name             string
}

// NewBuilder starts a Builder for a filter with the given initial
// capacity hint and target aggregate false-positive probability.
// Defaults: entries_per_bucket=4, growth_factor=2, tightening_ratio=0.5,
// max_kicks=512, a cespare/xxhash hasher, a crypto/rand-backed RNG.
func NewBuilder(initialCapacity uint64, falsePositiveProbability float64) *Builder {
	return &Builder{
		initialCapacity:  initialCapacity,
		fpp:              falsePositiveProbability,
		entriesPerBucket: defaultEntriesPerBucket,
		growthFactor:     defaultGrowthFactor,
		tighteningRatio:  defaultTighteningRatio,
		maxKicks:         defaultMaxKicks,
	}
}

// NewBuilderFromConfig starts a Builder pre-filled from a FilterConfig
// loaded via pkg/config.Load, so an embedding application can source its
// Builder defaults from a YAML file instead of hand-writing Go.
func NewBuilderFromConfig(cfg config.FilterConfig) *Builder {
	return NewBuilder(cfg.InitialCapacity, cfg.FalsePositiveProbability).
		EntriesPerBucket(cfg.EntriesPerBucket).
		GrowthFactor(cfg.GrowthFactor).
		TighteningRatio(cfg.TighteningRatio).
		MaxKicks(cfg.MaxKicks).
		WithMetrics(cfg.EnableMetrics).
		WithLogger(logging.New(logging.LevelFromString(cfg.LogLevel), cfg.Name, nil)).
		Name(cfg.Name)
}

// EntriesPerBucket overrides b, the number of cells per bucket.
func (b *Builder) EntriesPerBucket(n uint8) *Builder {
	b.entriesPerBucket = n
	return b
}

// GrowthFactor overrides s, the capacity multiplier applied to each
// newly appended filter.
func (b *Builder) GrowthFactor(s uint64) *Builder {
	b.growthFactor = s
	return b
}

// TighteningRatio overrides r, the per-filter false-positive-budget ratio.
func (b *Builder) TighteningRatio(r float64) *Builder {
	b.tighteningRatio = r
	return b
}

// MaxKicks overrides the eviction chain length cap used by every filter
// in the stack.
func (b *Builder) MaxKicks(k uint32) *Builder {
	b.maxKicks = k
	return b
}

// WithHasher overrides the pluggable 64-bit hasher.
func (b *Builder) WithHasher(h Hasher) *Builder {
	b.hasher = h
	return b
}

// WithRNG overrides the pluggable eviction RNG.
func (b *Builder) WithRNG(r RNG) *Builder {
	b.rng = r
	return b
}

// WithLogger attaches a diagnostic logger. Growth (which follows an
// eviction-chain exhaustion in the active filter) and compaction are
// logged at DEBUG; the core filter never requires a logger to function.
func (b *Builder) WithLogger(l *logging.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetrics enables emitting operational counters/gauges through
// github.com/hashicorp/go-metrics's global sink (see metrics.go). Off by
// default, matching the library's "no ambient I/O" posture.
func (b *Builder) WithMetrics(enabled bool) *Builder {
	b.metricsEnabled = enabled
	return b
}

// Name attaches a human-readable name used in log lines and metric keys.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// Build validates the configuration and constructs a ScalableCuckooFilter
// holding one empty CuckooFilter sized for the initial capacity hint.
func (b *Builder) Build() (*ScalableCuckooFilter, error) {
	if b.initialCapacity == 0 {
		return nil, ErrInvalidCapacity
	}
	if b.fpp <= 0 || b.fpp >= 1 {
		return nil, ErrInvalidFPP
	}
	if b.entriesPerBucket == 0 {
		return nil, ErrInvalidEntriesPerBucket
	}
	if b.growthFactor < 2 {
		return nil, ErrInvalidGrowthFactor
	}
	if b.tighteningRatio <= 0 || b.tighteningRatio >= 1 {
		return nil, ErrInvalidTighteningRatio
	}

	hasher := b.hasher
	if hasher == nil {
		hasher = NewXXHasher()
	}
	rng := b.rng
	if rng == nil {
		rng = NewCryptoRNG()
	}

	name := b.name
	if name == "" {
		name = "scuckoo-" + uuid.NewString()
	}

	s := &ScalableCuckooFilter{
		initialCapacityHint: b.initialCapacity,
		fpp:                 b.fpp,
		entriesPerBucket:    b.entriesPerBucket,
		growthFactor:        b.growthFactor,
		tighteningRatio:     b.tighteningRatio,
		maxKicks:            b.maxKicks,
		hasher:              hasher,
		rng:                 rng,
		logger:              b.logger,
		metricsEnabled:      b.metricsEnabled,
		name:                name,
	}

	first, err := s.newFilterForLevel(0)
	if err != nil {
		return nil, err
	}
	s.filters = append(s.filters, first)
	return s, nil
}
