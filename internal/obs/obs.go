// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package obs is the ground-support observability surface: Prometheus
// counters/gauges for the core's internal health (store reconciliations,
// buffer depth, flush failures, response-poll size, beacon refresh count)
// plus one OpenTelemetry tracer spanning each tick's acquisition→
// aggregation→flush pipeline and each pending-sequence step. This is a
// stand-in for the ground station's telemetry dashboard, not part of the
// flight core itself (spec §1 scopes the radio link and ground tooling as
// external); the core's behavior is identical whether or not anything
// scrapes it.
package obs

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktraceprovider "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Metrics is the fixed set of Prometheus collectors the core reports
// against, one per spec §2 component with a natural scalar signal.
type Metrics struct {
	Reconciliations  prometheus.Counter
	BufferDepth      prometheus.Gauge
	FlushFailures    prometheus.Counter
	ResponsePollSize prometheus.Gauge
	BeaconRefreshes  prometheus.Counter
}

// NewMetrics registers Metrics' collectors against reg under namespace
// "cubesat".
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Reconciliations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cubesat",
			Subsystem: "store",
			Name:      "reconciliations_total",
			Help:      "Number of times the global state store's triple replicas were reconciled by majority vote.",
		}),
		BufferDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cubesat",
			Subsystem: "buf",
			Name:      "depth",
			Help:      "Current occupancy of the linear telemetry buffer.",
		}),
		FlushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cubesat",
			Subsystem: "storage",
			Name:      "flush_failures_total",
			Help:      "Number of per-entry SD flush failures.",
		}),
		ResponsePollSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cubesat",
			Subsystem: "respoll",
			Name:      "size",
			Help:      "Current response-poll queue length.",
		}),
		BeaconRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cubesat",
			Subsystem: "beacon",
			Name:      "refreshes_total",
			Help:      "Number of beacon telemetry refreshes (BEACON_ON transitions).",
		}),
	}
	reg.MustRegister(m.Reconciliations, m.BufferDepth, m.FlushFailures, m.ResponsePollSize, m.BeaconRefreshes)
	return m
}

// Observability bundles the Prometheus registry/metrics and the
// OpenTelemetry tracer used across the main loop.
type Observability struct {
	Registry *prometheus.Registry
	Metrics  *Metrics
	Tracer   oteltrace.Tracer

	provider *sdktraceprovider.TracerProvider
}

// New wires a fresh Prometheus registry and an OpenTelemetry
// TracerProvider scoped to serviceName. No exporter is attached by
// default — a ground-support deployment that wants spans shipped
// somewhere can attach a span processor to Provider() before the first
// span starts.
func New(serviceName string) *Observability {
	reg := prometheus.NewRegistry()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	tp := sdktraceprovider.NewTracerProvider(sdktraceprovider.WithResource(res))
	otel.SetTracerProvider(tp)

	return &Observability{
		Registry: reg,
		Metrics:  NewMetrics(reg),
		Tracer:   tp.Tracer(serviceName),
		provider: tp,
	}
}

// Provider exposes the underlying TracerProvider so callers can attach
// exporters/span processors.
func (o *Observability) Provider() *sdktraceprovider.TracerProvider { return o.provider }

// Handler returns the /metrics HTTP handler for the wired registry.
func (o *Observability) Handler() http.Handler {
	return promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and releases the tracer provider.
func (o *Observability) Shutdown(ctx context.Context) error {
	return o.provider.Shutdown(ctx)
}
