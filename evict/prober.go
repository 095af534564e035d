// prober.go: the rate-limited heap-pressure overflow probe (spec.md §4.4).
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package evict

import (
	"runtime"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/pbnjay/memory"
)

// systemHeapSampler pairs github.com/pbnjay/memory's total-system-memory
// reading (the "max heap" half of the probe, for platforms without a
// managed-runtime heap ceiling) with runtime.MemStats' HeapAlloc (the
// "used" half).
type systemHeapSampler struct {
	maxBytes uint64
}

func newSystemHeapSampler() *systemHeapSampler {
	max := memory.TotalMemory()
	if max == 0 {
		// memory.TotalMemory returns 0 when detection fails; fall back
		// to a conservative 1 GiB ceiling rather than dividing by zero
		// in overflow().
		max = 1 << 30
	}
	return &systemHeapSampler{maxBytes: max}
}

func (s *systemHeapSampler) Sample() (maxBytes, usedBytes uint64) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return s.maxBytes, stats.HeapAlloc
}

// prober rate-limits overflow checks to at most once per
// config.ProbeRateLimit, per spec.md §4.4: "any overflow check occurring
// within 500 ms of the previous probe returns 'not overflowing' without
// sampling memory."
type prober struct {
	mu            sync.Mutex
	sampler       HeapSampler
	rateLimit     time.Duration
	lastProbeNs   int64
	thresholdFrac func() float64
}

func newProber(sampler HeapSampler, rateLimit time.Duration, thresholdFrac func() float64) *prober {
	if sampler == nil {
		sampler = newSystemHeapSampler()
	}
	return &prober{
		sampler:       sampler,
		rateLimit:     rateLimit,
		thresholdFrac: thresholdFrac,
	}
}

func (p *prober) now() int64 {
	return timecache.CachedTimeNano()
}

// overflowing reports whether residency exceeds the configured threshold
// fraction of max heap. Within rateLimit of the previous probe it reports
// not overflowing, unconditionally, without re-sampling memory; replaying
// the last real answer here would undermine the rate limit's whole point,
// damping eviction churn.
func (p *prober) overflowing() bool {
	now := p.now()

	p.mu.Lock()
	if p.lastProbeNs != 0 && now-p.lastProbeNs < int64(p.rateLimit) {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()

	maxBytes, usedBytes := p.sampler.Sample()
	var result bool
	if maxBytes > 0 {
		result = float64(usedBytes)/float64(maxBytes) > p.thresholdFrac()
	}

	p.mu.Lock()
	p.lastProbeNs = now
	p.mu.Unlock()

	return result
}
