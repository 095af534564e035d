// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package evict

import (
	"testing"
	"time"
)

// countingSampler counts how many times Sample is invoked, so tests can
// verify the probe rate limit actually suppresses re-sampling rather than
// just returning a plausible-looking answer.
type countingSampler struct {
	maxBytes, usedBytes uint64
	calls               int
}

func (s *countingSampler) Sample() (uint64, uint64) {
	s.calls++
	return s.maxBytes, s.usedBytes
}

func TestProber_RateLimitsRepeatedCalls(t *testing.T) {
	sampler := &countingSampler{maxBytes: 100, usedBytes: 90}
	p := newProber(sampler, time.Hour, func() float64 { return 0.5 })

	first := p.overflowing()
	second := p.overflowing()
	third := p.overflowing()

	if !first {
		t.Fatalf("overflowing() first call = %v, want true (90/100 > 0.5)", first)
	}
	if second || third {
		t.Fatalf("overflowing() = %v, %v within the rate-limit window, want false, false (not overflowing, no re-sample)", second, third)
	}
	if sampler.calls != 1 {
		t.Errorf("Sample() called %d times within the rate-limit window, want 1", sampler.calls)
	}
}

func TestProber_ReportsOverflowAgainstThreshold(t *testing.T) {
	tests := []struct {
		name      string
		used      uint64
		max       uint64
		threshold float64
		want      bool
	}{
		{"below threshold", 40, 100, 0.5, false},
		{"above threshold", 60, 100, 0.5, true},
		{"at threshold is not overflowing", 50, 100, 0.5, false},
		{"zero max never overflows", 100, 0, 0.01, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sampler := &countingSampler{maxBytes: tc.max, usedBytes: tc.used}
			p := newProber(sampler, time.Nanosecond, func() float64 { return tc.threshold })
			// Each subtest's prober is fresh, so the first call always
			// samples regardless of rate limit.
			if got := p.overflowing(); got != tc.want {
				t.Errorf("overflowing() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewSystemHeapSampler_NeverZeroMax(t *testing.T) {
	s := newSystemHeapSampler()
	max, _ := s.Sample()
	if max == 0 {
		t.Fatal("systemHeapSampler.Sample() max = 0, want a positive fallback ceiling")
	}
}
