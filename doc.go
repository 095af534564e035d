// Package storecore is the local, per-node storage-engine core of a
// distributed, versioned key-value store.
//
// It is organised into the following subpackages:
//
//   - storecore/clock: a vector-clock version comparator producing a
//     four-valued BEFORE/AFTER/CONCURRENT/EQUAL verdict.
//   - storecore/engine: an in-memory, version-aware storage engine with
//     multi-version concurrency and optimistic conflict detection.
//   - storecore/evict: a heap-pressure-driven eviction map — a concurrent
//     hash table threaded with a doubly-linked list offering FIFO,
//     Second-Chance, and LRU replacement.
//   - storecore/stats: a sliding-window request-statistics core exposing
//     per-operation count, throughput, and average latency.
//   - storecore/stattrack: a decorator that wires any storecore.Store into
//     a storecore/stats.Registry.
//
// Network transport, replication, routing, on-disk persistence, serializer
// registries, cluster membership, and access control are out of scope:
// storecore is the local storage primitive those layers would sit on top
// of, not the layers themselves.
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package storecore

// Version identifies this module for diagnostics and error context.
const Version = "v0.1.0-dev"
