// Package stattrack wraps any storecore.Store and feeds a
// stats.Registry, per spec.md §4.5.
//
// Grounded on the teacher's metrics-collector wrap-and-record shape
// (reference/teacher/cache.go's RecordGet/RecordSet call sites around
// every public cache method) and spec.md §4.5's exact error-kind
// bookkeeping: every call's elapsed time lands in its OpKind counter on
// success; any error additionally bumps EXCEPTION, and an obsolete-version
// error also bumps OBSOLETE.
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package stattrack

import (
	"github.com/agilira/go-timecache"

	"github.com/vordex/storecore"
	"github.com/vordex/storecore/clock"
	"github.com/vordex/storecore/stats"
)

// Store wraps an inner storecore.Store, timing each operation into a
// stats.Registry. Errors are propagated unchanged — the wrapper observes
// and counts them, it never swallows them (spec.md §7).
type Store[K comparable, V any] struct {
	inner    storecore.Store[K, V]
	registry *stats.Registry
}

// New wraps inner, recording every operation into registry.
func New[K comparable, V any](inner storecore.Store[K, V], registry *stats.Registry) *Store[K, V] {
	return &Store[K, V]{inner: inner, registry: registry}
}

var _ storecore.Store[string, string] = (*Store[string, string])(nil)

// Registry returns the stats.Registry this wrapper records into, so
// callers can read counts/throughput/latency without a capability
// round-trip.
func (s *Store[K, V]) Registry() *stats.Registry {
	return s.registry
}

func now() int64 {
	return timecache.CachedTimeNano()
}

// record times the call that began at start into kind, bumping EXCEPTION on any
// returned error and additionally OBSOLETE when the error is specifically
// an obsolete-version failure (spec.md §4.5).
func record(registry *stats.Registry, kind storecore.OpKind, err *error, start int64) {
	elapsed := now() - start
	registry.RecordTime(kind, elapsed)
	if *err != nil {
		registry.RecordTime(storecore.OpException, elapsed)
		if storecore.IsObsoleteVersion(*err) {
			registry.RecordTime(storecore.OpObsolete, elapsed)
		}
	}
}

// Get times the inner Get call into OpGet.
func (s *Store[K, V]) Get(key K) (records []storecore.Versioned[V], err error) {
	start := now()
	defer func() { record(s.registry, storecore.OpGet, &err, start) }()
	records, err = s.inner.Get(key)
	return
}

// GetAll times the inner GetAll call into OpGetAll.
func (s *Store[K, V]) GetAll(keys []K) (out map[K][]storecore.Versioned[V], err error) {
	start := now()
	defer func() { record(s.registry, storecore.OpGetAll, &err, start) }()
	out, err = s.inner.GetAll(keys)
	return
}

// Put times the inner Put call into OpPut, additionally bumping OpObsolete
// when the put is rejected as obsolete (spec.md §4.5).
func (s *Store[K, V]) Put(key K, record_ storecore.Versioned[V]) (err error) {
	start := now()
	defer func() { record(s.registry, storecore.OpPut, &err, start) }()
	err = s.inner.Put(key, record_)
	return
}

// Delete times the inner Delete call into OpDelete.
func (s *Store[K, V]) Delete(key K, version clock.Version) (removed bool, err error) {
	start := now()
	defer func() { record(s.registry, storecore.OpDelete, &err, start) }()
	removed, err = s.inner.Delete(key, version)
	return
}

// DeleteAll times the inner DeleteAll call into OpDeleteAll.
func (s *Store[K, V]) DeleteAll(versions map[K]clock.Version) (removed bool, err error) {
	start := now()
	defer func() { record(s.registry, storecore.OpDeleteAll, &err, start) }()
	removed, err = s.inner.DeleteAll(versions)
	return
}

// DeleteAllMatching times the inner DeleteAllMatching call into
// OpDeleteAll — spec.md §4.5 names no separate kind for expression-based
// deletion, so it shares DELETE_ALL's counter.
func (s *Store[K, V]) DeleteAllMatching(matchType storecore.MatchType, expression string) (removed bool, err error) {
	start := now()
	defer func() { record(s.registry, storecore.OpDeleteAll, &err, start) }()
	removed, err = s.inner.DeleteAllMatching(matchType, expression)
	return
}

// Entries delegates without timing: iteration has no single elapsed
// duration to record against (spec.md §4.5 only names the seven
// request/response operations, not iterator construction).
func (s *Store[K, V]) Entries() storecore.Iterator[storecore.Entry[K, V]] {
	return s.inner.Entries()
}

// Keys delegates without timing, for the same reason as Entries.
func (s *Store[K, V]) Keys() storecore.Iterator[K] {
	return s.inner.Keys()
}

// GetCapability delegates to the inner store, additionally answering the
// stats-registry capability with this wrapper's own registry.
func (s *Store[K, V]) GetCapability(tag storecore.Capability) (interface{}, error) {
	if tag == storecore.CapabilityStatsRegistry {
		return s.registry, nil
	}
	return s.inner.GetCapability(tag)
}
