// map.go: the concurrent eviction map (spec.md §3 "Eviction node", §4.4).
//
// The map+ring pairing is a fresh implementation in the teacher's idiom
// (config/error/logger seams, atomics-over-mutex discipline) rather than
// an adaptation of the teacher's fixed-array W-TinyLFU table
// (reference/teacher/cache.go), which cannot express the sentinel ring +
// UNLINKED-node identity model spec.md §3 requires. The single-evictor
// CAS gate is grounded on
// _examples/Jekaa-go-mvcc-map/mvcc/map.go's "one critical section wins"
// discipline, applied to an `evicting` flag instead of a commit mutex.
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package evict

import (
	"sync"
	"sync/atomic"

	"github.com/vordex/storecore"
)

// Map is a concurrent hash table paired with a heap-pressure-driven
// eviction ring, per spec.md §3/§4.4. Values must be non-nil; see PutIfAbsent.
type Map[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]*node[K, V]
	ring  *ring[K, V]

	policy Policy
	prober *prober

	thresholdMu sync.RWMutex
	threshold   float64

	onEvict func(key interface{}, value interface{})
	logger  storecore.Logger

	evicting atomic.Bool
}

// New creates an eviction map from cfg, applying cfg.Validate() first.
func New[K comparable, V any](cfg Config) *Map[K, V] {
	cfg.Validate()

	m := &Map[K, V]{
		items:     make(map[K]*node[K, V]),
		ring:      newRing[K, V](),
		policy:    cfg.Policy,
		threshold: cfg.ThresholdPercent,
		onEvict:   cfg.OnEvict,
		logger:    cfg.Logger,
	}
	m.prober = newProber(cfg.Sampler, cfg.ProbeRateLimit, m.Threshold)
	return m
}

// Threshold returns the current heap-residency threshold fraction.
func (m *Map[K, V]) Threshold() float64 {
	m.thresholdMu.RLock()
	defer m.thresholdMu.RUnlock()
	return m.threshold
}

// SetThreshold updates the heap-residency threshold fraction, for
// hot-reload (see ThresholdWatcher).
func (m *Map[K, V]) SetThreshold(percent float64) {
	m.thresholdMu.Lock()
	m.threshold = percent
	m.thresholdMu.Unlock()
}

// Len returns the number of entries currently in the map.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Get returns the value for key and fires the policy's onAccess, then
// triggers an eviction attempt (spec.md §4.4 "evict() is called on every
// get and putIfAbsent").
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	n, ok := m.items[key]
	m.mu.RUnlock()

	var zero V
	if !ok {
		m.maybeEvict()
		return zero, false
	}

	onAccess(m.policy, m.ring, n)
	m.maybeEvict()
	return n.value, true
}

// PutIfAbsent inserts value for key only if key is not already present,
// returning false without modification if it was. A literal nil
// interface{} value is rejected with an InvalidKey error; there is no
// separate illegal-argument error kind. A typed nil (for example a nil
// pointer) is not detected and is stored like any other value.
func (m *Map[K, V]) PutIfAbsent(key K, value V) (bool, error) {
	if isNilValue(value) {
		return false, storecore.NewErrInvalidKey("putIfAbsent: value must not be nil")
	}

	m.mu.Lock()
	if _, exists := m.items[key]; exists {
		m.mu.Unlock()
		m.maybeEvict()
		return false, nil
	}
	n := m.ring.newNode(key, value)
	m.items[key] = n
	m.mu.Unlock()

	// appendToTail happens outside the map lock: the node briefly sits
	// pending, the transient window spec.md §3 documents between
	// insertion and ring linkage. A concurrent Remove(key) can observe n
	// in m.items during that window and call m.ring.remove(n) before
	// this appendToTail runs; remove's spin-wait (node.go) and
	// appendToTail's pending -> linked CAS resolve the race without
	// leaving an orphaned node in the ring.
	m.ring.appendToTail(n)

	m.maybeEvict()
	return true, nil
}

// Remove deletes key from the map and unlinks its node from the ring,
// if present.
func (m *Map[K, V]) Remove(key K) bool {
	m.mu.Lock()
	n, ok := m.items[key]
	if ok {
		delete(m.items, key)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	m.ring.remove(n)
	return true
}

// Clear removes every entry from the map and empties the ring.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	m.items = make(map[K]*node[K, V])
	m.mu.Unlock()
	m.ring = newRing[K, V]()
}

func isNilValue(v interface{}) bool {
	return v == nil
}

// maybeEvict is the trigger described in spec.md §4.4: a no-op unless
// overflowing and the map is non-empty; otherwise a single caller
// (selected by the evicting CAS) runs the eviction loop while others
// skip it entirely.
func (m *Map[K, V]) maybeEvict() {
	if m.Len() == 0 {
		return
	}
	if !m.prober.overflowing() {
		return
	}
	if !m.evicting.CompareAndSwap(false, true) {
		return // another goroutine already owns the eviction loop
	}
	defer m.evicting.Store(false)
	m.evictLoop()
}

// evictLoop walks the ring from the head, applying the policy's onEvict,
// until size has fallen below ShrinkTargetRatio of the size observed on
// entry, or the ring becomes empty (spec.md §4.4 "Loop").
func (m *Map[K, V]) evictLoop() {
	peak := m.ring.len()
	if peak == 0 {
		return
	}
	target := int(float64(peak) * ShrinkTargetRatio)

	for m.ring.len() > target {
		n := m.ring.head()
		if n == nil {
			return
		}
		if !onEvict(m.policy, m.ring, n) {
			continue // survived; policy already repositioned it
		}

		m.mu.Lock()
		current, stillMapped := m.items[n.key]
		if stillMapped && current == n {
			delete(m.items, n.key)
		}
		m.mu.Unlock()

		if stillMapped && current == n {
			m.ring.remove(n)
			if m.onEvict != nil {
				m.onEvict(n.key, n.value)
			}
		} else {
			// Already removed by a concurrent Remove(); just make sure
			// it is unlinked so the loop doesn't spin on it forever.
			m.ring.remove(n)
		}
	}
}
