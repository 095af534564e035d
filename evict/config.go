// config.go: configuration for the eviction map (spec.md §4.4).
//
// Follows the teacher's normalize-don't-fail Config/Validate/DefaultConfig
// pattern (reference/teacher/config.go): Validate only clamps out-of-range
// fields to a sane default, it never returns an error.
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package evict

import (
	"time"

	"github.com/vordex/storecore"
)

// Policy selects which eviction policy governs the ring (spec.md §6).
type Policy int

const (
	// FIFO always evicts the node at the ring's head.
	FIFO Policy = iota
	// SecondChance gives a marked node one reprieve before evicting it.
	SecondChance
	// LRU keeps the ring ordered by access recency.
	LRU
)

func (p Policy) String() string {
	switch p {
	case FIFO:
		return "fifo"
	case SecondChance:
		return "second_chance"
	case LRU:
		return "lru"
	default:
		return "unknown"
	}
}

const (
	// DefaultThresholdPercent is the fraction (0..1) of max heap above
	// which overflow fires, unless overridden.
	DefaultThresholdPercent = 0.85

	// DefaultProbeRateLimit is the minimum interval between two heap
	// residency probes (spec.md §4.4: "500 ms").
	DefaultProbeRateLimit = 500 * time.Millisecond

	// ShrinkTargetRatio is the fraction of the size observed on entry to
	// the eviction loop that the loop shrinks toward.
	ShrinkTargetRatio = 0.9
)

// HeapSampler reports a (max, used) heap-residency reading. The default
// implementation pairs github.com/pbnjay/memory's total-system-memory
// reading with runtime.MemStats; platforms with a managed-runtime heap
// API can substitute their own, per spec.md §9.
type HeapSampler interface {
	Sample() (maxBytes, usedBytes uint64)
}

// Config holds the eviction map's tunables.
type Config struct {
	// Policy selects the eviction policy. Default: FIFO.
	Policy Policy

	// ThresholdPercent is the heap-residency fraction (0..1) above which
	// the map is considered overflowing. Default: DefaultThresholdPercent.
	ThresholdPercent float64

	// ProbeRateLimit throttles heap-residency probes. Default:
	// DefaultProbeRateLimit.
	ProbeRateLimit time.Duration

	// Sampler supplies the (max, used) heap reading. If nil, a sampler
	// backed by github.com/pbnjay/memory + runtime.MemStats is used.
	Sampler HeapSampler

	// OnEvict is notified after a node is evicted. Must be fast and
	// non-reentrant (spec.md §5): it must not call back into the map.
	OnEvict func(key interface{}, value interface{})

	// Logger is used for debugging and monitoring. If nil, NoOpLogger.
	Logger storecore.Logger
}

// DefaultConfig returns a Config with every field at its documented
// default.
func DefaultConfig() Config {
	return Config{
		Policy:           FIFO,
		ThresholdPercent: DefaultThresholdPercent,
		ProbeRateLimit:   DefaultProbeRateLimit,
		Logger:           storecore.NoOpLogger{},
	}
}

// Validate normalizes out-of-range fields to their default. It never
// returns an error, following the same normalize-don't-fail discipline as
// the rest of the package's Config handling.
func (c *Config) Validate() {
	if c.ThresholdPercent <= 0 || c.ThresholdPercent > 1 {
		c.ThresholdPercent = DefaultThresholdPercent
	}
	if c.ProbeRateLimit <= 0 {
		c.ProbeRateLimit = DefaultProbeRateLimit
	}
	if c.Logger == nil {
		c.Logger = storecore.NoOpLogger{}
	}
}
