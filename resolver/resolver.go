//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package resolver locates the image bytes behind an artifact name.
//
// A name is looked up in the artifact store first. On a miss the current turn
// and the session history are searched by name, then the only image of the
// current turn is accepted as a fallback. A reference recovered from the
// conversation is saved back to the store, so the next lookup is a store hit.
// The bytes are finally written to a scratch file for downstream calls.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	itelemetry "trpc.group/trpc-go/trpc-image-agent-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-image-agent-go/log"
	imetric "trpc.group/trpc-go/trpc-image-agent-go/telemetry/metric"
	itrace "trpc.group/trpc-go/trpc-image-agent-go/telemetry/trace"
)

// Resolved is the result of a successful resolution.
type Resolved struct {
	Name     string
	Data     []byte
	MimeType string
	// Path is the scratch file holding Data. The caller owns its cleanup.
	Path   string
	Source Source
	// PersistErr holds the error of saving a conversation match back to the store.
	// It does not fail the resolution.
	PersistErr error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExtractor sets the extractor. The default supports no remote schemes.
func WithExtractor(e *Extractor) Option {
	return func(r *Resolver) {
		r.extractor = e
	}
}

// WithMaterializer sets the scratch file writer. The default writes to os.TempDir().
func WithMaterializer(m *Materializer) Option {
	return func(r *Resolver) {
		r.materializer = m
	}
}

// WithTracer sets the tracer. The default is the global tracer at call time.
func WithTracer(t trace.Tracer) Option {
	return func(r *Resolver) {
		r.tracer = t
	}
}

// WithMeter sets the meter the resolution counter is created from.
func WithMeter(m metric.Meter) Option {
	return func(r *Resolver) {
		r.meter = m
	}
}

// Resolver resolves artifact names to bytes. It is safe for concurrent use.
type Resolver struct {
	store        Store
	matcher      Matcher
	extractor    *Extractor
	materializer *Materializer
	tracer       trace.Tracer
	meter        metric.Meter
	counter      metric.Int64Counter
}

// New creates a resolver over store.
func New(store Store, opts ...Option) *Resolver {
	r := &Resolver{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.extractor == nil {
		r.extractor = NewExtractor(nil)
	}
	if r.materializer == nil {
		r.materializer = NewMaterializer("")
	}
	if r.meter == nil {
		r.meter = imetric.Meter
	}
	counter, err := r.meter.Int64Counter(itelemetry.MetricResolveCount,
		metric.WithDescription("Artifact resolutions by outcome and source."))
	if err != nil {
		log.Warnf("resolver: create counter %s: %v", itelemetry.MetricResolveCount, err)
	}
	r.counter = counter
	return r
}

// Materializer returns the scratch file writer used by the resolver.
func (r *Resolver) Materializer() *Materializer {
	return r.materializer
}

// Resolve returns the bytes an artifact name refers to.
//
// Errors keep their kind: ErrNotFound (also ErrAmbiguousMatch when several
// current turn images are present), ErrInvalidReference, ErrUnsupportedScheme,
// ErrExtractionFailure, ErrNoExtractableContent and ErrInvalidName.
func (r *Resolver) Resolve(ctx context.Context, name string, conv Conversation) (res *Resolved, err error) {
	tracer := r.tracer
	if tracer == nil {
		tracer = itrace.Tracer
	}
	ctx, span := tracer.Start(ctx, itelemetry.SpanNameResolveArtifact)
	source := Source("")
	persisted := false
	defer func() {
		outcome := Outcome(err)
		itelemetry.TraceResolve(span, name, string(source), outcome, persisted)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if r.counter != nil {
			r.counter.Add(ctx, 1, metric.WithAttributes(
				attribute.String(itelemetry.KeyOutcome, outcome),
				attribute.String("source", string(source)),
			))
		}
	}()

	if err := ValidateName(name); err != nil {
		return nil, err
	}

	ref, ok := r.store.Get(ctx, name)
	source = SourceStore
	var persistErr error
	if ok {
		log.Debugf("resolver: %q found in artifact store", name)
	} else {
		m, err := r.matcher.Find(name, conv)
		if err != nil {
			source = ""
			if errors.Is(err, ErrAmbiguousMatch) {
				return nil, fmt.Errorf("%w: %q: %w", ErrNotFound, name, err)
			}
			return nil, fmt.Errorf("%w: %q is neither in the artifact store nor in the conversation", ErrNotFound, name)
		}
		ref, source = m.Ref, m.Source
		log.Infof("resolver: %q recovered from %s content", name, source)

		if err := r.store.Put(ctx, name, ref); err != nil {
			persistErr = err
			log.Warnf("resolver: persisting %q to the artifact store failed, continuing: %v", name, err)
		} else {
			persisted = true
		}
	}

	content, err := r.extractor.Extract(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	path, err := r.materializer.Materialize(name, content.Data)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	log.Debugf("resolver: %q materialized to %s (%s, %d bytes)", name, path, content.MimeType, len(content.Data))

	return &Resolved{
		Name:       name,
		Data:       content.Data,
		MimeType:   content.MimeType,
		Path:       path,
		Source:     source,
		PersistErr: persistErr,
	}, nil
}
