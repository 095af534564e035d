// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package stats

import (
	"testing"
	"time"

	"github.com/vordex/storecore"
)

func TestRegistry_RecordTimeRoutesByKind(t *testing.T) {
	r := NewRegistry(32, 30_000, nil)

	r.RecordTime(storecore.OpGet, int64(time.Millisecond))
	r.RecordTime(storecore.OpPut, int64(2*time.Millisecond))

	if got := r.Count(storecore.OpGet); got != 1 {
		t.Errorf("Count(OpGet) = %d, want 1", got)
	}
	if got := r.Count(storecore.OpPut); got != 1 {
		t.Errorf("Count(OpPut) = %d, want 1", got)
	}
	if got := r.Count(storecore.OpDelete); got != 0 {
		t.Errorf("Count(OpDelete) = %d, want 0 (never recorded)", got)
	}
}

func TestRegistry_ForwardsToParent(t *testing.T) {
	parent := NewRegistry(32, 30_000, nil)
	child := NewRegistry(32, 30_000, parent)

	child.RecordTime(storecore.OpGet, int64(time.Millisecond))
	child.RecordTime(storecore.OpGet, int64(time.Millisecond))

	if got := child.Count(storecore.OpGet); got != 2 {
		t.Errorf("child Count(OpGet) = %d, want 2", got)
	}
	if got := parent.Count(storecore.OpGet); got != 2 {
		t.Errorf("parent Count(OpGet) = %d, want 2 (forwarded)", got)
	}
	if got := parent.Count(storecore.OpPut); got != 0 {
		t.Errorf("parent Count(OpPut) = %d, want 0 (never recorded)", got)
	}
}

func TestRegistry_AllOpKindsHaveACounter(t *testing.T) {
	r := NewDefaultRegistry(nil)
	for _, kind := range storecore.AllOpKinds() {
		if r.Counter(kind) == nil {
			t.Errorf("Counter(%v) is nil, want every OpKind to have a counter", kind)
		}
	}
}

func TestRegistry_ThroughputAndLatencyDelegateToCounter(t *testing.T) {
	r := NewRegistry(32, 30_000, nil)
	for i := 0; i < 10; i++ {
		r.RecordTime(storecore.OpGet, int64(time.Millisecond))
		time.Sleep(20 * time.Millisecond)
	}

	if got := r.Count(storecore.OpGet); got != 10 {
		t.Errorf("Count(OpGet) = %d, want 10", got)
	}
	if tp := r.Throughput(storecore.OpGet); tp <= 0 || tp > 51 {
		t.Errorf("Throughput(OpGet) = %v, want in (0, 51]", tp)
	}
	if avg := r.AverageLatencyMs(storecore.OpGet); avg <= 0 {
		t.Errorf("AverageLatencyMs(OpGet) = %v, want > 0", avg)
	}
}
