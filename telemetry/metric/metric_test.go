//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package metric

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	itelemetry "trpc.group/trpc-go/trpc-image-agent-go/internal/telemetry"
)

func TestMetricsEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "custom-metric:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "generic-endpoint:4318")
	assert.Equal(t, "custom-metric:4318", metricsEndpoint(itelemetry.ProtocolHTTP))

	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")
	assert.Equal(t, "generic-endpoint:4318", metricsEndpoint(itelemetry.ProtocolHTTP))

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	assert.Equal(t, "localhost:4318", metricsEndpoint(itelemetry.ProtocolHTTP))
	assert.Equal(t, "localhost:4317", metricsEndpoint(itelemetry.ProtocolGRPC))
}

func TestStartAndClean(t *testing.T) {
	for _, protocol := range []string{itelemetry.ProtocolHTTP, itelemetry.ProtocolGRPC} {
		t.Run(protocol, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			clean, err := Start(ctx, WithProtocol(protocol), WithEndpoint("localhost:4399"))
			require.NoError(t, err)
			require.NotNil(t, clean)
			counter, err := Meter.Int64Counter("test.count")
			require.NoError(t, err)
			counter.Add(context.Background(), 1)
			// No collector runs in tests, so the flush error is ignored.
			_ = clean()
		})
	}
}
