//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-image-agent-go/agent"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact/cos"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact/inmemory"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact/s3"
	"trpc.group/trpc-go/trpc-image-agent-go/config"
	"trpc.group/trpc-go/trpc-image-agent-go/event"
	"trpc.group/trpc-go/trpc-image-agent-go/log"
	"trpc.group/trpc-go/trpc-image-agent-go/model/gemini"
	"trpc.group/trpc-go/trpc-image-agent-go/resolver"
	"trpc.group/trpc-go/trpc-image-agent-go/session"
	sessioninmemory "trpc.group/trpc-go/trpc-image-agent-go/session/inmemory"
	sessionredis "trpc.group/trpc-go/trpc-image-agent-go/session/redis"
	"trpc.group/trpc-go/trpc-image-agent-go/storage/object"
	cosobject "trpc.group/trpc-go/trpc-image-agent-go/storage/object/cos"
	"trpc.group/trpc-go/trpc-image-agent-go/storage/object/gcs"
	s3object "trpc.group/trpc-go/trpc-image-agent-go/storage/object/s3"
	"trpc.group/trpc-go/trpc-image-agent-go/telemetry/metric"
	"trpc.group/trpc-go/trpc-image-agent-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-image-agent-go/tool/image"
)

// app holds the collaborators built from the configuration.
type app struct {
	cfg      config.Config
	store    artifact.Service
	sessions session.Service
	fetchers *object.Registry
	tools    *image.ToolSet
	cleanups []func() error
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}
	var err error
	if a.sessions, err = newSessions(cfg.Session); err != nil {
		return nil, err
	}
	if a.store, err = newStore(ctx, cfg.Store); err != nil {
		a.close()
		return nil, err
	}
	if a.fetchers, err = newFetchers(ctx, cfg.ObjectStorage); err != nil {
		a.close()
		return nil, err
	}
	if err := a.startTelemetry(ctx); err != nil {
		a.close()
		return nil, err
	}
	if a.tools, err = newToolSet(ctx, cfg); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	for _, clean := range a.cleanups {
		if err := clean(); err != nil {
			log.Warnf("shutdown: %v", err)
		}
	}
	if err := a.sessions.Close(); err != nil {
		log.Warnf("close sessions: %v", err)
	}
}

func (a *app) startTelemetry(ctx context.Context) error {
	t := a.cfg.Telemetry
	if t.TracesEndpoint != "" {
		clean, err := trace.Start(ctx, trace.WithEndpoint(t.TracesEndpoint), trace.WithProtocol(t.Protocol))
		if err != nil {
			return fmt.Errorf("start tracing: %w", err)
		}
		a.cleanups = append(a.cleanups, clean)
	}
	if t.MetricsEndpoint != "" {
		clean, err := metric.Start(ctx, metric.WithEndpoint(t.MetricsEndpoint), metric.WithProtocol(t.Protocol))
		if err != nil {
			return fmt.Errorf("start metrics: %w", err)
		}
		a.cleanups = append(a.cleanups, clean)
	}
	return nil
}

func newSessions(c config.SessionConfig) (session.Service, error) {
	switch c.Backend {
	case "", config.SessionInMemory:
		return sessioninmemory.NewSessionService(sessioninmemory.WithSessionEventLimit(c.EventLimit)), nil
	case config.SessionRedis:
		svc, err := sessionredis.NewService(
			sessionredis.WithRedisClientURL(c.Redis.URL),
			sessionredis.WithSessionEventLimit(c.EventLimit),
		)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("%w: session %q", config.ErrUnknownBackend, c.Backend)
	}
}

func newStore(ctx context.Context, c config.StoreConfig) (artifact.Service, error) {
	switch c.Backend {
	case "", config.BackendInMemory:
		return inmemory.NewService(), nil
	case config.BackendCOS:
		var opts []cos.Option
		if c.COS.SecretID != "" {
			opts = append(opts, cos.WithSecretID(c.COS.SecretID))
		}
		if c.COS.SecretKey != "" {
			opts = append(opts, cos.WithSecretKey(c.COS.SecretKey))
		}
		if c.COS.Timeout > 0 {
			opts = append(opts, cos.WithTimeout(c.COS.Timeout))
		}
		if c.COS.Prefix != "" {
			opts = append(opts, cos.WithKeyPrefix(c.COS.Prefix))
		}
		return cos.NewService(c.COS.Name, c.COS.BucketURL, opts...)
	case config.BackendS3:
		return s3.NewService(ctx, s3.Config{
			Bucket:       c.S3.Bucket,
			Prefix:       c.S3.Prefix,
			Region:       c.S3.Region,
			Endpoint:     c.S3.Endpoint,
			UsePathStyle: c.S3.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, c.Backend)
	}
}

func newFetchers(ctx context.Context, c config.ObjectStorageConfig) (*object.Registry, error) {
	reg := object.NewRegistry()
	if c.GCS.Enabled {
		f, err := gcs.NewDefault(ctx)
		if err != nil {
			return nil, err
		}
		reg.Register(gcs.Scheme, f)
	}
	if c.S3.Enabled {
		f, err := s3object.NewFromConfig(ctx, s3object.Config{
			Region:       c.S3.Region,
			Endpoint:     c.S3.Endpoint,
			UsePathStyle: c.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		reg.Register(s3object.Scheme, f)
	}
	if c.COS.Enabled {
		opts := []cosobject.Option{cosobject.WithRegion(c.COS.Region)}
		if c.COS.SecretID != "" {
			opts = append(opts, cosobject.WithSecretID(c.COS.SecretID))
		}
		if c.COS.SecretKey != "" {
			opts = append(opts, cosobject.WithSecretKey(c.COS.SecretKey))
		}
		if c.COS.Timeout > 0 {
			opts = append(opts, cosobject.WithTimeout(c.COS.Timeout))
		}
		reg.Register(cosobject.Scheme, cosobject.New(opts...))
	}
	return reg, nil
}

func newToolSet(ctx context.Context, cfg config.Config) (*image.ToolSet, error) {
	opts := []image.Option{
		image.WithDownloadTimeout(cfg.Download.Timeout),
		image.WithMaxDownloadSize(cfg.Download.MaxSize),
	}
	if g := cfg.Generation; g.Enabled {
		imagen, err := gemini.NewImagenGenerator(ctx, gemini.Config{
			Project:  g.Project,
			Location: g.Location,
			Model:    g.Model,
		})
		if err != nil {
			return nil, err
		}
		content, err := gemini.NewContentGenerator(ctx, gemini.Config{
			Project:  g.Project,
			Location: g.GeminiLocation,
			Model:    g.GeminiModel,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, image.WithGenerator(imagen), image.WithGeminiGenerator(content))
	}
	if u := cfg.Upscale; u.Enabled {
		upscaler, err := gemini.NewUpscaler(ctx, gemini.Config{
			Project:  u.Project,
			Location: u.Location,
			Model:    u.Model,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, image.WithUpscaler(upscaler))
	}
	return image.NewToolSet(opts...), nil
}

// userContent builds the user turn from a text message and local image files.
func userContent(text string, images []string) (*genai.Content, error) {
	var parts []*genai.Part
	if text != "" {
		parts = append(parts, genai.NewPartFromText(text))
	}
	for _, path := range images {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", path, err)
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{
			Data:        data,
			MIMEType:    mimetype.Detect(data).String(),
			DisplayName: filepath.Base(path),
		}})
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return &genai.Content{Role: string(genai.RoleUser), Parts: parts}, nil
}

// loadTranscript reads a JSON export of an earlier conversation: an array of
// contents or parts, or a single one.
func loadTranscript(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", path, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	if items, ok := v.([]any); ok {
		return items, nil
	}
	return []any{v}, nil
}

// invocationContext opens the configured session, records the user turn and
// returns a context carrying the invocation.
func (a *app) invocationContext(
	ctx context.Context,
	content *genai.Content,
	opts ...agent.InvocationOptions,
) (context.Context, *agent.Invocation, error) {
	key := session.Key{AppName: a.cfg.App.Name, UserID: a.cfg.App.User, SessionID: a.cfg.App.Session}
	sess, err := a.sessions.GetSession(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		if sess, err = a.sessions.CreateSession(ctx, key, nil); err != nil {
			return nil, nil, err
		}
	}
	inv := agent.NewInvocation(append([]agent.InvocationOptions{
		agent.WithInvocationAgentName(event.AuthorAgent),
		agent.WithInvocationSession(sess),
		agent.WithInvocationUserContent(content),
		agent.WithInvocationArtifactService(a.store),
		agent.WithInvocationResolverOptions(
			resolver.WithExtractor(resolver.NewExtractor(a.fetchers)),
			resolver.WithMaterializer(resolver.NewMaterializer(a.cfg.ScratchDir)),
		),
	}, opts...)...)
	if content != nil {
		evt := event.NewContentEvent(inv.InvocationID, event.AuthorUser, content)
		if err := a.sessions.AppendEvent(ctx, sess, evt); err != nil {
			return nil, nil, err
		}
	}
	return agent.NewInvocationContext(ctx, inv), inv, nil
}

var errNoSession = errors.New("no session configured")

func (a *app) sessionInfo() (artifact.SessionInfo, error) {
	if a.cfg.App.Session == "" {
		return artifact.SessionInfo{}, errNoSession
	}
	return artifact.SessionInfo{AppName: a.cfg.App.Name, UserID: a.cfg.App.User, SessionID: a.cfg.App.Session}, nil
}
