// engine.go: the versioned in-memory engine (spec.md §4.3).
//
// Grounded on the optimistic conflict-resolution loop spec.md §4.3
// describes directly, with the critical-section discipline (minimal
// work under a narrow mutex, re-checking "is this still the mapped
// entry" before mutating) borrowed from the pack's MVCCMap
// (_examples/Jekaa-go-mvcc-map/mvcc/map.go) — adapted from whole-map
// snapshot isolation to a per-key list of pairwise-CONCURRENT versions.
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package engine

import (
	"sync"

	"github.com/vordex/storecore"
	"github.com/vordex/storecore/clock"
)

// keylist is the per-key ordered sequence of pairwise-CONCURRENT
// versioned records, guarded by its own lock (spec.md §3 "Key list").
type keylist[V any] struct {
	mu      sync.Mutex
	records []storecore.Versioned[V]
}

func (l *keylist[V]) snapshot() []storecore.Versioned[V] {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]storecore.Versioned[V], len(l.records))
	copy(out, l.records)
	return out
}

// Engine is the concurrent mapping from key to key-list described in
// spec.md §4.3, plus an optional registered KeySerializer used only by
// expression-based deletion.
type Engine[K comparable, V any] struct {
	mu     sync.Mutex // guards insert-if-absent / compare-and-remove on lists
	lists  map[K]*keylist[V]
	logger storecore.Logger

	serializer  storecore.KeySerializer[K]
	elEvaluator ExpressionEvaluator
}

// ExpressionEvaluator evaluates an EL_EXPRESSION predicate against a
// single key's serialized string form. Implementations must not panic;
// an evaluation error is reported through the error return and treated
// as a false predicate by the caller (spec.md §7 EvaluationError).
type ExpressionEvaluator interface {
	Evaluate(expression string, key string) (bool, error)
}

// Option configures an Engine at construction.
type Option[K comparable, V any] func(*Engine[K, V])

// WithLogger overrides the engine's default no-op logger.
func WithLogger[K comparable, V any](logger storecore.Logger) Option[K, V] {
	return func(e *Engine[K, V]) { e.logger = logger }
}

// WithKeySerializer registers a KeySerializer, enabling
// DeleteAllMatching and the KeySerializer capability lookup.
func WithKeySerializer[K comparable, V any](s storecore.KeySerializer[K]) Option[K, V] {
	return func(e *Engine[K, V]) { e.serializer = s }
}

// WithExpressionEvaluator registers the evaluator backing EL_EXPRESSION
// match. Without one, EL_EXPRESSION fails with Unsupported.
func WithExpressionEvaluator[K comparable, V any](ev ExpressionEvaluator) Option[K, V] {
	return func(e *Engine[K, V]) { e.elEvaluator = ev }
}

var _ storecore.Store[string, string] = (*Engine[string, string])(nil)

// New creates an empty Engine.
func New[K comparable, V any](opts ...Option[K, V]) *Engine[K, V] {
	e := &Engine[K, V]{
		lists:  make(map[K]*keylist[V]),
		logger: storecore.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Get returns a snapshot copy of key's key list, or an empty, never-nil
// slice if key is absent.
func (e *Engine[K, V]) Get(key K) ([]storecore.Versioned[V], error) {
	e.mu.Lock()
	list, ok := e.lists[key]
	e.mu.Unlock()
	if !ok {
		return []storecore.Versioned[V]{}, nil
	}
	return list.snapshot(), nil
}

// GetAll returns a snapshot copy of the key list for every key in keys
// that is present.
func (e *Engine[K, V]) GetAll(keys []K) (map[K][]storecore.Versioned[V], error) {
	out := make(map[K][]storecore.Versioned[V], len(keys))
	for _, k := range keys {
		records, err := e.Get(k)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			out[k] = records
		}
	}
	return out, nil
}

// Put runs the optimistic conflict-resolution loop of spec.md §4.3.
func (e *Engine[K, V]) Put(key K, record storecore.Versioned[V]) error {
	if record.Version == nil {
		return storecore.NewErrInvalidKey("put")
	}
	for {
		e.mu.Lock()
		list, ok := e.lists[key]
		if !ok {
			list = &keylist[V]{records: []storecore.Versioned[V]{record}}
			e.lists[key] = list
			e.mu.Unlock()
			return nil
		}
		e.mu.Unlock()

		list.mu.Lock()
		// Re-check this is still the mapped list; a concurrent delete
		// may have removed it between our lookup and this lock.
		e.mu.Lock()
		current, stillMapped := e.lists[key]
		e.mu.Unlock()
		if !stillMapped || current != list {
			list.mu.Unlock()
			continue
		}

		survivors := make([]storecore.Versioned[V], 0, len(list.records)+1)
		obsolete := false
		for _, existing := range list.records {
			switch record.Version.Compare(existing.Version) {
			case clock.Before:
				obsolete = true
			case clock.After:
				// existing is dominated; drop it.
			case clock.Equal:
				// same version: the new record replaces existing.
			default: // Concurrent
				survivors = append(survivors, existing)
			}
			if obsolete {
				break
			}
		}
		if obsolete {
			list.mu.Unlock()
			return storecore.NewErrObsoleteVersion(key)
		}
		survivors = append(survivors, record)
		list.records = survivors
		list.mu.Unlock()
		return nil
	}
}

// Delete removes every retained version of key that is BEFORE version,
// or unconditionally removes the mapping if version is nil.
func (e *Engine[K, V]) Delete(key K, version clock.Version) (bool, error) {
	if version == nil {
		e.mu.Lock()
		_, existed := e.lists[key]
		delete(e.lists, key)
		e.mu.Unlock()
		return existed, nil
	}

	e.mu.Lock()
	list, ok := e.lists[key]
	e.mu.Unlock()
	if !ok {
		return false, nil
	}

	list.mu.Lock()
	removedAny := false
	survivors := make([]storecore.Versioned[V], 0, len(list.records))
	for _, existing := range list.records {
		if existing.Version.Compare(version) == clock.Before {
			removedAny = true
			continue
		}
		survivors = append(survivors, existing)
	}
	list.records = survivors
	empty := len(survivors) == 0
	list.mu.Unlock()

	if empty {
		e.mu.Lock()
		if current, ok := e.lists[key]; ok && current == list {
			delete(e.lists, key)
		}
		e.mu.Unlock()
	}
	return removedAny, nil
}

// DeleteAll applies Delete's semantics for every (key, version) pair.
func (e *Engine[K, V]) DeleteAll(versions map[K]clock.Version) (bool, error) {
	anyRemoved := false
	for key, version := range versions {
		removed, err := e.Delete(key, version)
		if err != nil {
			return anyRemoved, err
		}
		if removed {
			anyRemoved = true
		}
	}
	return anyRemoved, nil
}

// GetCapability performs a tagged capability lookup.
func (e *Engine[K, V]) GetCapability(tag storecore.Capability) (interface{}, error) {
	switch tag {
	case storecore.CapabilityKeySerializer:
		if e.serializer == nil {
			return nil, storecore.NewErrNoSuchCapability(string(tag))
		}
		return e.serializer, nil
	default:
		return nil, storecore.NewErrNoSuchCapability(string(tag))
	}
}
