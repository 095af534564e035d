// store.go: the engine contract consumed by wrappers and callers (spec.md §6).
//
// Generalizes the teacher's Cache interface from a fixed string-keyed,
// interface{}-valued contract to a generic key/value pair plus the
// version-aware put/delete semantics the engine requires.
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package storecore

import "github.com/vordex/storecore/clock"

// Versioned pairs an immutable value with the version it was written
// under. Both fields are final once constructed, per spec.md §3.
type Versioned[V any] struct {
	Value   V
	Version clock.Version
}

// Iterator is a closable, forward-only, non-removing cursor, per
// spec.md §6. Next must be called before the first Item.
type Iterator[T any] interface {
	// Next advances the cursor and reports whether an item is available.
	Next() bool

	// Item returns the element the cursor currently sits at. Item's
	// result is only meaningful after a Next call returned true.
	Item() T

	// Close releases any resources the iterator holds. Close is safe
	// to call multiple times and after exhaustion.
	Close() error
}

// Entry pairs a key with a single one of its versioned records, yielded
// by Store.Entries as it flattens every key's list (spec.md §4.3).
type Entry[K comparable, V any] struct {
	Key    K
	Record Versioned[V]
}

// Store is the versioned in-memory engine interface: every concrete
// engine, and every decorator wrapping one, implements this. All
// methods must be safe for concurrent use.
type Store[K comparable, V any] interface {
	// Get returns a snapshot copy of key's key list, or an empty,
	// never-nil slice if key is absent.
	Get(key K) ([]Versioned[V], error)

	// GetAll returns a snapshot copy of the key list for every key in
	// keys that is present.
	GetAll(keys []K) (map[K][]Versioned[V], error)

	// Put inserts record, retrying the optimistic conflict-resolution
	// loop described in spec.md §4.3. Fails with ObsoleteVersion if
	// record.Version is strictly dominated by an existing version.
	Put(key K, record Versioned[V]) error

	// Delete removes every retained version of key that is BEFORE
	// version, or unconditionally removes the mapping if version is
	// nil. Reports whether anything was removed.
	Delete(key K, version clock.Version) (bool, error)

	// DeleteAll applies Delete's semantics for every (key, version)
	// pair in versions. Reports whether anything was removed.
	DeleteAll(versions map[K]clock.Version) (bool, error)

	// DeleteAllMatching deletes every key whose serialized form
	// satisfies matchType against expression. Requires a registered
	// KeySerializer capability; otherwise fails with Unsupported.
	DeleteAllMatching(matchType MatchType, expression string) (bool, error)

	// Entries returns a closable iterator flattening every key's
	// versioned records.
	Entries() Iterator[Entry[K, V]]

	// Keys returns a closable iterator over the map's keys.
	Keys() Iterator[K]

	// GetCapability performs a tagged capability lookup. Fails with
	// NoSuchCapability if tag is not implemented by this store.
	GetCapability(tag Capability) (interface{}, error)
}

// KeySerializer converts a key to its canonical string form, used only
// by DeleteAllMatching. Implementations must be deterministic.
type KeySerializer[K comparable] interface {
	Serialize(key K) string

	// RawBytes returns key's raw byte representation, used for
	// STARTS_WITH's byte-prefix comparison rather than the string
	// form other match types compare against.
	RawBytes(key K) []byte
}
