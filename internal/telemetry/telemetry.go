//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds the names and helpers shared by the image agent's
// tracing and metrics code.
package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// telemetry service constants.
const (
	ServiceName      = "image-agent"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-go-agent"
	InstrumentName   = "trpc.image.agent"

	SpanNameResolveArtifact   = "resolve_artifact"
	SpanNamePrefixExecuteTool = "execute_tool"

	MetricResolveCount = "image_agent.resolve.count"
)

const (
	// ProtocolGRPC uses gRPC protocol for OTLP exporter.
	ProtocolGRPC string = "grpc"
	// ProtocolHTTP uses HTTP protocol for OTLP exporter.
	ProtocolHTTP string = "http"
)

// telemetry attribute keys.
const (
	KeyArtifactName = "trpc.image.agent.artifact_name"
	KeySource       = "trpc.image.agent.resolve_source"
	KeyOutcome      = "outcome"
	KeyPersisted    = "trpc.image.agent.persisted"
	KeyToolName     = "gen_ai.tool.name"
	KeyInvocationID = "trpc.image.agent.invocation_id"
	KeySessionID    = "trpc.image.agent.session_id"
)

// NewExecuteToolSpanName returns the span name of a tool execution.
func NewExecuteToolSpanName(toolName string) string {
	if toolName == "" {
		return SpanNamePrefixExecuteTool
	}
	return SpanNamePrefixExecuteTool + " " + toolName
}

// TraceResolve records the result of one artifact resolution on span.
func TraceResolve(span trace.Span, name, source, outcome string, persisted bool) {
	span.SetAttributes(
		attribute.String(KeyArtifactName, name),
		attribute.String(KeySource, source),
		attribute.String(KeyOutcome, outcome),
		attribute.Bool(KeyPersisted, persisted),
	)
}

// NewGRPCConn creates a new gRPC connection to the OpenTelemetry Collector.
func NewGRPCConn(endpoint string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(endpoint,
		// Note the use of insecure transport here. TLS is recommended in production.
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}
	return conn, nil
}
