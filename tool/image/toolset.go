//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package image provides the image agent tools: loading artifacts to local files,
// upscaling, generation with Imagen and Gemini, and downloading by URL.
//
// Every tool reads the invocation from the call context (see agent.NewInvocationContext).
// Failures of the model services and of artifact resolution are reported in the
// Message of the tool output; a context without a usable invocation is an error.
package image

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-image-agent-go/agent"
	itelemetry "trpc.group/trpc-go/trpc-image-agent-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-image-agent-go/model"
	itrace "trpc.group/trpc-go/trpc-image-agent-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-image-agent-go/tool"
	"trpc.group/trpc-go/trpc-image-agent-go/tool/function"
)

// Tool names.
const (
	ToolLoadImage      = "load_image_from_artifact"
	ToolUpscaleImage   = "upscale_image"
	ToolGenerateImage  = "generate_image"
	ToolGenerateGemini = "generate_image_gemini"
	ToolDownloadFile   = "download_file_from_url"

	toolSetName = "image"

	defaultDownloadTimeout = 60 * time.Second
	defaultMaxDownloadSize = 64 << 20
	defaultScaleFactor     = 4.0
	pngMimeType            = "image/png"
)

var _ tool.ToolSet = (*ToolSet)(nil)

// ToolSet holds the image tools. Generation and upscale tools are only offered
// when their collaborator is configured.
type ToolSet struct {
	generator       model.ImageGenerator
	geminiGenerator model.ImageGenerator
	upscaler        model.ImageUpscaler
	httpClient      *http.Client
	downloadTimeout time.Duration
	maxDownloadSize int64
	tracer          trace.Tracer
}

// Option configures a ToolSet.
type Option func(*ToolSet)

// WithGenerator sets the Imagen generator behind generate_image.
func WithGenerator(g model.ImageGenerator) Option {
	return func(s *ToolSet) {
		s.generator = g
	}
}

// WithGeminiGenerator sets the Gemini generator behind generate_image_gemini.
func WithGeminiGenerator(g model.ImageGenerator) Option {
	return func(s *ToolSet) {
		s.geminiGenerator = g
	}
}

// WithUpscaler sets the upscaler behind upscale_image.
func WithUpscaler(u model.ImageUpscaler) Option {
	return func(s *ToolSet) {
		s.upscaler = u
	}
}

// WithHTTPClient sets the client used by download_file_from_url.
func WithHTTPClient(c *http.Client) Option {
	return func(s *ToolSet) {
		s.httpClient = c
	}
}

// WithDownloadTimeout bounds each download. Non-positive values keep the default.
func WithDownloadTimeout(d time.Duration) Option {
	return func(s *ToolSet) {
		if d > 0 {
			s.downloadTimeout = d
		}
	}
}

// WithMaxDownloadSize limits the bytes accepted by a download.
func WithMaxDownloadSize(n int64) Option {
	return func(s *ToolSet) {
		if n > 0 {
			s.maxDownloadSize = n
		}
	}
}

// WithTracer sets the tracer of the tool spans. The default is the global tracer at call time.
func WithTracer(t trace.Tracer) Option {
	return func(s *ToolSet) {
		s.tracer = t
	}
}

// NewToolSet creates the image tool set.
func NewToolSet(opts ...Option) *ToolSet {
	s := &ToolSet{
		httpClient:      http.DefaultClient,
		downloadTimeout: defaultDownloadTimeout,
		maxDownloadSize: defaultMaxDownloadSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements tool.ToolSet.
func (s *ToolSet) Name() string { return toolSetName }

// Close implements tool.ToolSet.
func (s *ToolSet) Close() error { return nil }

// Tools implements tool.ToolSet.
func (s *ToolSet) Tools(context.Context) []tool.Tool {
	tools := []tool.Tool{
		function.NewFunctionTool(traced(s, ToolLoadImage, s.LoadImage),
			function.WithName(ToolLoadImage),
			function.WithDescription("Loads an image from an artifact to a local file path. "+
				"Falls back to images uploaded in the conversation when the artifact store has no such name.")),
		function.NewFunctionTool(traced(s, ToolDownloadFile, s.DownloadFile),
			function.WithName(ToolDownloadFile),
			function.WithDescription("Downloads a file from a URL and saves it as an artifact.")),
	}
	if s.upscaler != nil {
		tools = append(tools, function.NewFunctionTool(traced(s, ToolUpscaleImage, s.UpscaleImage),
			function.WithName(ToolUpscaleImage),
			function.WithDescription("Upscales an image given by artifact name or local path. "+
				"Factors of 4 or more upscale x4, smaller factors x2.")))
	}
	if s.generator != nil {
		tools = append(tools, function.NewFunctionTool(traced(s, ToolGenerateImage, s.GenerateImage),
			function.WithName(ToolGenerateImage),
			function.WithDescription("Generates an image from a prompt with Imagen and saves it as an artifact.")))
	}
	if s.geminiGenerator != nil {
		tools = append(tools, function.NewFunctionTool(traced(s, ToolGenerateGemini, s.GenerateImageGemini),
			function.WithName(ToolGenerateGemini),
			function.WithDescription("Generates images with a Gemini image model for reasoning heavy requests "+
				"such as infographics or complex layouts, and saves them as artifacts.")))
	}
	return tools
}

// traced runs fn inside an execute_tool span.
func traced[I, O any](s *ToolSet, name string, fn func(context.Context, I) (O, error)) func(context.Context, I) (O, error) {
	return func(ctx context.Context, in I) (O, error) {
		tracer := s.tracer
		if tracer == nil {
			tracer = itrace.Tracer
		}
		ctx, span := tracer.Start(ctx, itelemetry.NewExecuteToolSpanName(name))
		defer span.End()
		span.SetAttributes(attribute.String(itelemetry.KeyToolName, name))
		if inv, ok := agent.InvocationFromContext(ctx); ok && inv != nil {
			span.SetAttributes(attribute.String(itelemetry.KeyInvocationID, inv.InvocationID))
			if inv.Session != nil {
				span.SetAttributes(attribute.String(itelemetry.KeySessionID, inv.Session.ID))
			}
		}
		out, err := fn(ctx, in)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return out, err
	}
}
