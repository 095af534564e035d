// window.go: the sliding-window sample ring (spec.md §3, §4.1).
//
// Grounded on the ring-over-parallel-arrays shape of the pack's
// slidingwindow.Counter (github.com/nik0sc/go-playground), adapted from a
// value-cardinality counter to a (timestamp, duration) latency/throughput
// ring per spec.md's exact contract.
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package stats

import (
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// unused is the sentinel written into a ring slot that has never been
// recorded into.
const unused int64 = -1

// SlidingWindowCounter tracks (arrival, duration) samples in a fixed-size
// ring and reports count/throughput/average-latency over the trailing
// windowMs milliseconds. Every method is safe for concurrent callers; no
// reader blocks a writer, per spec.md §4.1.
type SlidingWindowCounter struct {
	arrival  []int64 // monotonic nanosecond timestamps, -1 = unused
	duration []int64 // operation duration in ns, -1 = unused/stale

	index atomic.Uint32 // monotonically incremented slot selector
	total atomic.Uint64 // lifetime sample count, never reset

	windowNanos int64
}

// NewSlidingWindowCounter creates a counter tracking at most maxOps
// samples within a window of windowMs milliseconds.
func NewSlidingWindowCounter(maxOps int, windowMs int64) *SlidingWindowCounter {
	if maxOps < 1 {
		maxOps = 1
	}
	arrival := make([]int64, maxOps)
	duration := make([]int64, maxOps)
	for i := range arrival {
		arrival[i] = unused
		duration[i] = unused
	}
	return &SlidingWindowCounter{
		arrival:     arrival,
		duration:    duration,
		windowNanos: windowMs * int64(time.Millisecond),
	}
}

func (c *SlidingWindowCounter) now() int64 {
	return timecache.CachedTimeNano()
}

// Record adds one sample of durationNs. The index is advanced before the
// slot is written, and arrival is written before duration — this is the
// one deliberate race the spec codifies (see spec.md §4.1/§9): a reader
// may briefly observe a fresh arrival paired with a stale or -1 duration,
// and must treat that slot's duration as absent rather than "fix" it by
// reordering the writes.
func (c *SlidingWindowCounter) Record(durationNs int64) {
	idx := c.index.Add(1) - 1
	slot := int(idx) % len(c.arrival)
	c.arrival[slot] = c.now()
	c.duration[slot] = durationNs
	c.total.Add(1)
}

// Count returns the number of samples currently within the trailing
// window. It is always <= the ring capacity.
func (c *SlidingWindowCounter) Count() int {
	now := c.now()
	n := 0
	for i := range c.arrival {
		if c.inWindow(c.arrival[i], now) {
			n++
		}
	}
	return n
}

// TotalCount returns the lifetime number of recorded samples,
// monotonically non-decreasing.
func (c *SlidingWindowCounter) TotalCount() uint64 {
	return c.total.Load()
}

// AverageLatencyMs returns the mean duration, in milliseconds, of samples
// within the trailing window. Returns 0 if no sample is in-window.
func (c *SlidingWindowCounter) AverageLatencyMs() float64 {
	now := c.now()
	var sum int64
	var n int
	for i := range c.arrival {
		if !c.inWindow(c.arrival[i], now) {
			continue
		}
		d := c.duration[i]
		if d < 0 {
			// Arrival landed in-window but duration hasn't been
			// written yet (or was never written) — treat as absent.
			continue
		}
		sum += d
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n) / float64(time.Millisecond)
}

// Throughput returns samples-per-second over the window's effective
// start, per spec.md §4.1. Returns -1 if elapsed time is <= 0 (no basis
// for a rate yet).
func (c *SlidingWindowCounter) Throughput() float64 {
	now := c.now()
	count := c.Count()
	startNanos := c.approximateStartNanos(now)
	elapsedSeconds := float64(now-startNanos) / float64(time.Second)
	if elapsedSeconds <= 0 {
		return -1
	}
	return float64(count) / elapsedSeconds
}

// ApproximateStartMs returns the effective start of the current window,
// in milliseconds since the Unix epoch's monotonic analogue: capped at
// windowMs ago, but never earlier than the oldest sample still retained
// when the ring has not yet filled over a full window.
func (c *SlidingWindowCounter) ApproximateStartMs() int64 {
	return c.approximateStartNanos(c.now()) / int64(time.Millisecond)
}

func (c *SlidingWindowCounter) approximateStartNanos(now int64) int64 {
	windowStart := now - c.windowNanos

	oldest := now
	found := false
	for _, a := range c.arrival {
		if a < 0 {
			continue
		}
		if !c.inWindow(a, now) {
			continue
		}
		if a < oldest {
			oldest = a
			found = true
		}
	}
	if !found {
		return windowStart
	}
	if oldest > windowStart {
		return oldest
	}
	return windowStart
}

func (c *SlidingWindowCounter) inWindow(arrival, now int64) bool {
	if arrival < 0 {
		return false
	}
	return now-arrival <= c.windowNanos
}
