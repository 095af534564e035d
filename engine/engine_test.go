// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package engine

import (
	"testing"

	"github.com/vordex/storecore"
	"github.com/vordex/storecore/clock"
)

func mustGet(t *testing.T, e *Engine[string, string], key string) []storecore.Versioned[string] {
	t.Helper()
	records, err := e.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) error: %v", key, err)
	}
	return records
}

func TestEngine_ObsoletePutRejected(t *testing.T) {
	e := New[string, string]()

	if err := e.Put("a", storecore.Versioned[string]{Value: "x", Version: clock.VectorClock{"1": 1}}); err != nil {
		t.Fatalf("first put: %v", err)
	}

	err := e.Put("a", storecore.Versioned[string]{Value: "y", Version: clock.VectorClock{"1": 0}})
	if !storecore.IsObsoleteVersion(err) {
		t.Fatalf("second put error = %v, want ObsoleteVersion", err)
	}

	got := mustGet(t, e, "a")
	if len(got) != 1 || got[0].Value != "x" {
		t.Fatalf("Get(a) = %+v, want exactly [{x, {1:1}}]", got)
	}
}

func TestEngine_ConcurrentVersionsCoexist(t *testing.T) {
	e := New[string, string]()

	if err := e.Put("k", storecore.Versioned[string]{Value: "v1", Version: clock.VectorClock{"A": 1}}); err != nil {
		t.Fatalf("put v1: %v", err)
	}
	if err := e.Put("k", storecore.Versioned[string]{Value: "v2", Version: clock.VectorClock{"B": 1}}); err != nil {
		t.Fatalf("put v2: %v", err)
	}

	got := mustGet(t, e, "k")
	if len(got) != 2 {
		t.Fatalf("Get(k) len = %d, want 2", len(got))
	}
}

func TestEngine_VersionScopedDelete(t *testing.T) {
	e := New[string, string]()
	_ = e.Put("k", storecore.Versioned[string]{Value: "v1", Version: clock.VectorClock{"A": 1}})
	_ = e.Put("k", storecore.Versioned[string]{Value: "v2", Version: clock.VectorClock{"B": 1}})

	removed, err := e.Delete("k", clock.VectorClock{"A": 1, "B": 1})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !removed {
		t.Fatalf("Delete() = false, want true (both versions dominated)")
	}
	if got := mustGet(t, e, "k"); len(got) != 0 {
		t.Fatalf("Get(k) after dominating delete = %+v, want empty", got)
	}
}

func TestEngine_DeleteWithNilVersionUnconditional(t *testing.T) {
	e := New[string, string]()
	_ = e.Put("k", storecore.Versioned[string]{Value: "v1", Version: clock.VectorClock{"A": 1}})

	removed, err := e.Delete("k", nil)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !removed {
		t.Fatalf("Delete(nil) = false, want true")
	}
	if got := mustGet(t, e, "k"); len(got) != 0 {
		t.Fatalf("Get(k) after unconditional delete = %+v, want empty", got)
	}
}

func TestEngine_DeleteAllMissingKeyReturnsFalse(t *testing.T) {
	e := New[string, string]()
	removed, err := e.DeleteAll(map[string]clock.Version{"missing": nil})
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if removed {
		t.Fatalf("DeleteAll() = true for an absent key, want false")
	}
}

func TestEngine_PutIdempotentOnEqualVersion(t *testing.T) {
	e := New[string, string]()
	v := storecore.Versioned[string]{Value: "v1", Version: clock.VectorClock{"A": 1}}
	if err := e.Put("k", v); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := e.Put("k", v); err != nil {
		t.Fatalf("second (identical) put: %v", err)
	}
	got := mustGet(t, e, "k")
	if len(got) != 1 {
		t.Fatalf("Get(k) len = %d, want 1 (equal replacement is a no-op on contents)", len(got))
	}
}

type stringSerializer struct{}

func (stringSerializer) Serialize(key string) string  { return key }
func (stringSerializer) RawBytes(key string) []byte   { return []byte(key) }

func TestEngine_ExpressionDeleteStartsWith(t *testing.T) {
	e := New[string, string](WithKeySerializer[string, string](stringSerializer{}))

	for _, k := range []string{"foo", "foobar", "bar"} {
		if err := e.Put(k, storecore.Versioned[string]{Value: k, Version: clock.VectorClock{"A": 1}}); err != nil {
			t.Fatalf("put %q: %v", k, err)
		}
	}

	removed, err := e.DeleteAllMatching(storecore.MatchStartsWith, "foo")
	if err != nil {
		t.Fatalf("DeleteAllMatching: %v", err)
	}
	if !removed {
		t.Fatalf("DeleteAllMatching() = false, want true")
	}
	if got := mustGet(t, e, "foo"); len(got) != 0 {
		t.Fatalf("Get(foo) = %+v, want empty after STARTS_WITH delete", got)
	}
	if got := mustGet(t, e, "foobar"); len(got) != 0 {
		t.Fatalf("Get(foobar) = %+v, want empty after STARTS_WITH delete", got)
	}
	if got := mustGet(t, e, "bar"); len(got) != 1 {
		t.Fatalf("Get(bar) = %+v, want one surviving record", got)
	}
}

func TestEngine_DeleteAllMatchingWithoutSerializerFails(t *testing.T) {
	e := New[string, string]()
	_, err := e.DeleteAllMatching(storecore.MatchStartsWith, "foo")
	if !storecore.IsUnsupported(err) {
		t.Fatalf("DeleteAllMatching without serializer = %v, want Unsupported", err)
	}
}

func TestEngine_GetCapabilityUnknownTagFails(t *testing.T) {
	e := New[string, string]()
	_, err := e.GetCapability("nonexistent")
	if !storecore.IsNoSuchCapability(err) {
		t.Fatalf("GetCapability(unknown) = %v, want NoSuchCapability", err)
	}
}

func TestEngine_GetCapabilityKeySerializer(t *testing.T) {
	ser := stringSerializer{}
	e := New[string, string](WithKeySerializer[string, string](ser))

	got, err := e.GetCapability(storecore.CapabilityKeySerializer)
	if err != nil {
		t.Fatalf("GetCapability: %v", err)
	}
	if _, ok := got.(storecore.KeySerializer[string]); !ok {
		t.Fatalf("GetCapability(key-serializer) returned %T, want a KeySerializer", got)
	}
}

func TestEngine_EntriesFlattensAllKeys(t *testing.T) {
	e := New[string, string]()
	_ = e.Put("a", storecore.Versioned[string]{Value: "1", Version: clock.VectorClock{"A": 1}})
	_ = e.Put("b", storecore.Versioned[string]{Value: "2", Version: clock.VectorClock{"A": 1}})
	_ = e.Put("b", storecore.Versioned[string]{Value: "3", Version: clock.VectorClock{"B": 1}})

	it := e.Entries()
	defer it.Close()

	count := 0
	for it.Next() {
		entry := it.Item()
		if entry.Key != "a" && entry.Key != "b" {
			t.Errorf("unexpected key %q", entry.Key)
		}
		count++
	}
	if count != 3 {
		t.Errorf("entries count = %d, want 3", count)
	}
}

func TestEngine_KeysIterator(t *testing.T) {
	e := New[string, string]()
	_ = e.Put("a", storecore.Versioned[string]{Value: "1", Version: clock.VectorClock{"A": 1}})
	_ = e.Put("b", storecore.Versioned[string]{Value: "2", Version: clock.VectorClock{"A": 1}})

	it := e.Keys()
	defer it.Close()

	seen := map[string]bool{}
	for it.Next() {
		seen[it.Item()] = true
	}
	if len(seen) != 2 || !seen["a"] || !seen["b"] {
		t.Errorf("Keys() = %v, want {a, b}", seen)
	}
}

func TestEngine_PutWithNilVersionIsInvalid(t *testing.T) {
	e := New[string, string]()
	err := e.Put("k", storecore.Versioned[string]{Value: "v", Version: nil})
	if !storecore.IsInvalidKey(err) {
		t.Fatalf("Put with nil version = %v, want InvalidKey", err)
	}
}
