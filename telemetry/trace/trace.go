//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package trace holds the OpenTelemetry tracer used by the image agent.
// It is a noop tracer until Start installs an OTLP exporter.
package trace

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	itelemetry "trpc.group/trpc-go/trpc-image-agent-go/internal/telemetry"
)

// Tracer is the tracer of the resolver and tool spans.
var Tracer trace.Tracer = noop.NewTracerProvider().Tracer("")

// Start installs a batching OTLP tracer provider and replaces Tracer.
// Without WithEndpoint, OTEL_EXPORTER_OTLP_TRACES_ENDPOINT and then
// OTEL_EXPORTER_OTLP_ENDPOINT are consulted, falling back to localhost.
func Start(ctx context.Context, opts ...Option) (clean func() error, err error) {
	o := &options{
		serviceName: itelemetry.ServiceName,
		protocol:    itelemetry.ProtocolGRPC,
		sampleRatio: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.endpoint == "" {
		o.endpoint = tracesEndpoint(o.protocol)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNamespace(itelemetry.ServiceNamespace),
		semconv.ServiceName(o.serviceName),
		semconv.ServiceVersion(itelemetry.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("trace: create resource: %w", err)
	}
	exporter, err := newExporter(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("trace: create %s exporter: %w", o.protocol, err)
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.sampleRatio))),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	Tracer = provider.Tracer(itelemetry.InstrumentName)

	return func() error {
		if err := provider.Shutdown(ctx); err != nil {
			return fmt.Errorf("trace: shutdown: %w", err)
		}
		return nil
	}, nil
}

func newExporter(ctx context.Context, o *options) (sdktrace.SpanExporter, error) {
	if o.protocol == itelemetry.ProtocolHTTP {
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(o.endpoint),
			otlptracehttp.WithInsecure(),
			otlptracehttp.WithHeaders(o.headers),
		)
	}
	conn, err := itelemetry.NewGRPCConn(o.endpoint)
	if err != nil {
		return nil, err
	}
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithGRPCConn(conn),
		otlptracegrpc.WithHeaders(o.headers),
	)
}

func tracesEndpoint(protocol string) string {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if protocol == itelemetry.ProtocolHTTP {
		return "localhost:4318"
	}
	return "localhost:4317"
}

// Option configures Start.
type Option func(*options)

type options struct {
	endpoint    string
	protocol    string
	serviceName string
	headers     map[string]string
	sampleRatio float64
}

// WithEndpoint sets the collector host and port, e.g. "collector:4317".
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithProtocol selects "grpc" (default) or "http". Empty keeps the default.
func WithProtocol(protocol string) Option {
	return func(o *options) {
		if protocol != "" {
			o.protocol = protocol
		}
	}
}

// WithServiceName overrides the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(o *options) {
		o.serviceName = name
	}
}

// WithHeaders sets headers sent with every export request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithSampleRatio samples root spans at ratio, clamped to [0, 1].
func WithSampleRatio(ratio float64) Option {
	return func(o *options) {
		o.sampleRatio = min(max(ratio, 0), 1)
	}
}
