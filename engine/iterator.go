// iterator.go: closable, forward-only iterators (spec.md §4.3 "entries/keys").
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package engine

import "github.com/vordex/storecore"

type keyIterator[K comparable] struct {
	keys  []K
	index int
}

func (it *keyIterator[K]) Next() bool {
	it.index++
	return it.index < len(it.keys)
}

func (it *keyIterator[K]) Item() K {
	return it.keys[it.index]
}

func (it *keyIterator[K]) Close() error {
	it.keys = nil
	return nil
}

// Keys returns a closable iterator over the map's keys, captured as a
// snapshot at call time.
func (e *Engine[K, V]) Keys() storecore.Iterator[K] {
	e.mu.Lock()
	keys := make([]K, 0, len(e.lists))
	for k := range e.lists {
		keys = append(keys, k)
	}
	e.mu.Unlock()
	return &keyIterator[K]{keys: keys, index: -1}
}

type entryIterator[K comparable, V any] struct {
	engine *Engine[K, V]
	keys   []K
	keyIdx int

	current []storecore.Versioned[V]
	recIdx  int
}

func (it *entryIterator[K, V]) Next() bool {
	for {
		if it.recIdx < len(it.current) {
			return true
		}
		it.keyIdx++
		if it.keyIdx >= len(it.keys) {
			return false
		}
		// Snapshot the next key's list under its own lock, then iterate
		// the snapshot outside the lock (spec.md §4.3). Empty lists
		// encountered mid-iteration — the key was deleted concurrently
		// — are skipped.
		records, err := it.engine.Get(it.keys[it.keyIdx])
		if err != nil || len(records) == 0 {
			it.current = nil
			it.recIdx = 0
			continue
		}
		it.current = records
		it.recIdx = 0
	}
}

func (it *entryIterator[K, V]) Item() storecore.Entry[K, V] {
	record := it.current[it.recIdx]
	it.recIdx++
	return storecore.Entry[K, V]{Key: it.keys[it.keyIdx], Record: record}
}

func (it *entryIterator[K, V]) Close() error {
	it.keys = nil
	it.current = nil
	return nil
}

// Entries returns a closable iterator flattening every key's versioned
// records. On advancing to a new key it takes a snapshot of that key's
// list under the list's lock, then iterates the snapshot outside the
// lock.
func (e *Engine[K, V]) Entries() storecore.Iterator[storecore.Entry[K, V]] {
	e.mu.Lock()
	keys := make([]K, 0, len(e.lists))
	for k := range e.lists {
		keys = append(keys, k)
	}
	e.mu.Unlock()
	return &entryIterator[K, V]{engine: e, keys: keys, keyIdx: -1}
}
