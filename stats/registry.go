// registry.go: one sliding-window counter per operation kind (spec.md §4.2).
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package stats

import "github.com/vordex/storecore"

const (
	// DefaultMaxOpsTracked is the ring capacity each per-kind counter
	// uses unless the caller configures a different size.
	DefaultMaxOpsTracked = 2000

	// DefaultWindowMs is the trailing window, in milliseconds, each
	// per-kind counter reports over unless configured otherwise.
	DefaultWindowMs = 60_000
)

// Registry maps every storecore.OpKind to its own SlidingWindowCounter.
// If a parent is configured, every recorded sample is also forwarded to
// the parent's counter for the same kind — recursive aggregation, per
// spec.md §4.2. There is no cross-kind locking: each counter already
// guards its own concurrent access.
type Registry struct {
	counters map[storecore.OpKind]*SlidingWindowCounter
	parent   *Registry
}

// NewRegistry creates a registry with one counter per storecore.OpKind,
// each sized maxOps/windowMs. parent may be nil.
func NewRegistry(maxOps int, windowMs int64, parent *Registry) *Registry {
	r := &Registry{
		counters: make(map[storecore.OpKind]*SlidingWindowCounter, len(storecore.AllOpKinds())),
		parent:   parent,
	}
	for _, kind := range storecore.AllOpKinds() {
		r.counters[kind] = NewSlidingWindowCounter(maxOps, windowMs)
	}
	return r
}

// NewDefaultRegistry creates a registry using DefaultMaxOpsTracked and
// DefaultWindowMs.
func NewDefaultRegistry(parent *Registry) *Registry {
	return NewRegistry(DefaultMaxOpsTracked, DefaultWindowMs, parent)
}

// RecordTime records one sample of durationNs for kind, and forwards the
// same sample to the parent registry's counter for kind, if configured.
func (r *Registry) RecordTime(kind storecore.OpKind, durationNs int64) {
	if counter, ok := r.counters[kind]; ok {
		counter.Record(durationNs)
	}
	if r.parent != nil {
		r.parent.RecordTime(kind, durationNs)
	}
}

// Counter returns the counter backing kind, or nil if kind is not tracked
// by this registry.
func (r *Registry) Counter(kind storecore.OpKind) *SlidingWindowCounter {
	return r.counters[kind]
}

// Count returns kind's in-window sample count.
func (r *Registry) Count(kind storecore.OpKind) int {
	if c := r.Counter(kind); c != nil {
		return c.Count()
	}
	return 0
}

// Throughput returns kind's in-window throughput, in samples/sec.
func (r *Registry) Throughput(kind storecore.OpKind) float64 {
	if c := r.Counter(kind); c != nil {
		return c.Throughput()
	}
	return 0
}

// AverageLatencyMs returns kind's in-window mean latency, in ms.
func (r *Registry) AverageLatencyMs(kind storecore.OpKind) float64 {
	if c := r.Counter(kind); c != nil {
		return c.AverageLatencyMs()
	}
	return 0
}
