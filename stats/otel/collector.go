// Package otel provides an OpenTelemetry exporter for storecore's stats
// registry, mirroring the teacher's own optional otel submodule
// (reference/teacher/otel/collector.go): a separate Go module so the core
// never pulls in the OTEL SDK, observable gauges reporting the registry's
// per-kind count/throughput/latency on every collection instead of a
// histogram fed on the hot path.
//
// # Usage
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	_, err := storecoreotel.NewExporter(provider, registry)
//
// Copyright (c) 2026 Vordex
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vordex/storecore"
	"github.com/vordex/storecore/stats"
)

func opKindAttr(kind storecore.OpKind) attribute.KeyValue {
	return attribute.String("op_kind", kind.String())
}

// Exporter registers one observable gauge per exposed statistic
// (spec.md §6 "count, throughput, average latency"), each reporting every
// storecore.OpKind as an attribute, sourced from a stats.Registry at
// collection time rather than pushed eagerly.
type Exporter struct {
	registry *stats.Registry

	count     metric.Int64ObservableGauge
	throughput metric.Float64ObservableGauge
	latencyMs metric.Float64ObservableGauge
}

// Options configures an Exporter.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/vordex/storecore".
	MeterName string
}

// Option is a functional option for configuring an Exporter.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful when exporting more than
// one registry (e.g. a per-node parent plus several per-wrapper children)
// from the same process.
func WithMeterName(name string) Option {
	return func(o *Options) { o.MeterName = name }
}

// NewExporter registers observable gauges on provider's meter, reading
// registry on every collection. provider and registry must not be nil.
func NewExporter(provider metric.MeterProvider, registry *stats.Registry, opts ...Option) (*Exporter, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}
	if registry == nil {
		return nil, errors.New("stats registry cannot be nil")
	}

	options := Options{MeterName: "github.com/vordex/storecore"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	e := &Exporter{registry: registry}

	var err error
	e.count, err = meter.Int64ObservableGauge(
		"storecore_op_count",
		metric.WithDescription("In-window sample count per operation kind"),
		metric.WithInt64Callback(e.observeCount),
	)
	if err != nil {
		return nil, err
	}

	e.throughput, err = meter.Float64ObservableGauge(
		"storecore_op_throughput",
		metric.WithDescription("In-window throughput (samples/sec) per operation kind"),
		metric.WithUnit("1/s"),
		metric.WithFloat64Callback(e.observeThroughput),
	)
	if err != nil {
		return nil, err
	}

	e.latencyMs, err = meter.Float64ObservableGauge(
		"storecore_op_latency_ms",
		metric.WithDescription("In-window average latency per operation kind, in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithFloat64Callback(e.observeLatency),
	)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Exporter) observeCount(_ context.Context, obs metric.Int64Observer) error {
	for _, kind := range storecore.AllOpKinds() {
		obs.Observe(int64(e.registry.Count(kind)), metric.WithAttributes(opKindAttr(kind)))
	}
	return nil
}

func (e *Exporter) observeThroughput(_ context.Context, obs metric.Float64Observer) error {
	for _, kind := range storecore.AllOpKinds() {
		obs.Observe(e.registry.Throughput(kind), metric.WithAttributes(opKindAttr(kind)))
	}
	return nil
}

func (e *Exporter) observeLatency(_ context.Context, obs metric.Float64Observer) error {
	for _, kind := range storecore.AllOpKinds() {
		obs.Observe(e.registry.AverageLatencyMs(kind), metric.WithAttributes(opKindAttr(kind)))
	}
	return nil
}
