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
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-image-agent-go/agent"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact/cos"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact/inmemory"
	"trpc.group/trpc-go/trpc-image-agent-go/config"
	"trpc.group/trpc-go/trpc-image-agent-go/resolver"
	sessioninmemory "trpc.group/trpc-go/trpc-image-agent-go/session/inmemory"
	sessionredis "trpc.group/trpc-go/trpc-image-agent-go/session/redis"
	"trpc.group/trpc-go/trpc-image-agent-go/tool"
	"trpc.group/trpc-go/trpc-image-agent-go/tool/image"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func offlineConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ScratchDir = t.TempDir()
	cfg.Generation.Enabled = false
	cfg.Upscale.Enabled = false
	return cfg
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	s, err := newStore(ctx, config.StoreConfig{Backend: config.BackendInMemory})
	require.NoError(t, err)
	assert.IsType(t, &inmemory.Service{}, s)

	s, err = newStore(ctx, config.StoreConfig{Backend: config.BackendCOS, COS: config.COSStoreConfig{
		Name:      "image-agent",
		BucketURL: "https://b-1250000000.cos.ap-guangzhou.myqcloud.com",
		Prefix:    "agents",
		SecretID:  "id",
		SecretKey: "key",
	}})
	require.NoError(t, err)
	assert.IsType(t, &cos.Service{}, s)

	_, err = newStore(ctx, config.StoreConfig{Backend: config.BackendCOS, COS: config.COSStoreConfig{BucketURL: "ftp://b"}})
	assert.ErrorIs(t, err, cos.ErrInvalidBucketURL)

	_, err = newStore(ctx, config.StoreConfig{Backend: "ftp"})
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestNewSessions(t *testing.T) {
	s, err := newSessions(config.SessionConfig{Backend: config.SessionInMemory})
	require.NoError(t, err)
	assert.IsType(t, &sessioninmemory.SessionService{}, s)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	s, err = newSessions(config.SessionConfig{
		Backend: config.SessionRedis,
		Redis:   config.RedisConfig{URL: "redis://" + mr.Addr()},
	})
	require.NoError(t, err)
	assert.IsType(t, &sessionredis.Service{}, s)
	assert.NoError(t, s.Close())

	_, err = newSessions(config.SessionConfig{Backend: "etcd"})
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestNewFetchers_Disabled(t *testing.T) {
	reg, err := newFetchers(context.Background(), config.ObjectStorageConfig{})
	require.NoError(t, err)
	assert.Empty(t, reg.Schemes())

	reg, err = newFetchers(context.Background(), config.ObjectStorageConfig{
		COS: config.COSFetcherConfig{Enabled: true, Region: "ap-guangzhou"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cos"}, reg.Schemes())
}

func TestUserContent(t *testing.T) {
	c, err := userContent("", nil)
	require.NoError(t, err)
	assert.Nil(t, c)

	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))
	c, err = userContent("upscale cat.png", []string{path})
	require.NoError(t, err)
	require.Len(t, c.Parts, 2)
	assert.Equal(t, "upscale cat.png", c.Parts[0].Text)
	assert.Equal(t, "cat.png", c.Parts[1].InlineData.DisplayName)
	assert.Equal(t, "image/png", c.Parts[1].InlineData.MIMEType)

	_, err = userContent("", []string{filepath.Join(t.TempDir(), "missing.png")})
	assert.Error(t, err)
}

func TestApp_LoadImageFromAttachedTurn(t *testing.T) {
	ctx := context.Background()
	cfg := offlineConfig(t)
	a, err := newApp(ctx, cfg)
	require.NoError(t, err)
	defer a.close()

	var buf bytes.Buffer
	require.NoError(t, printTools(&buf, a.tools.Tools(ctx)))
	assert.Contains(t, buf.String(), image.ToolLoadImage)
	assert.NotContains(t, buf.String(), image.ToolUpscaleImage)

	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))
	content, err := userContent("", []string{path})
	require.NoError(t, err)
	callCtx, inv, err := a.invocationContext(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, 1, inv.Session.GetEventCount())

	ct, err := tool.Lookup(ctx, a.tools, image.ToolLoadImage)
	require.NoError(t, err)
	out, err := ct.Call(callCtx, []byte(`{"artifact_name":"cat.png"}`))
	require.NoError(t, err)
	loaded, ok := out.(image.LoadImageOutput)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(cfg.ScratchDir, "cat.png"), loaded.Path)

	info, err := a.sessionInfo()
	require.NoError(t, err)
	stored, err := a.store.LoadArtifact(ctx, info, "cat.png", nil)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, pngHeader, stored.Data)

	buf.Reset()
	require.NoError(t, printJSON(&buf, loaded))
	assert.Contains(t, buf.String(), `"path"`)
}

func TestApp_LoadImageFromEarlierRun(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cfg := offlineConfig(t)
	cfg.Session = config.SessionConfig{
		Backend:    config.SessionRedis,
		EventLimit: 100,
		Redis:      config.RedisConfig{URL: "redis://" + mr.Addr()},
	}

	first, err := newApp(ctx, cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))
	upload, err := userContent("here is my cat", []string{path})
	require.NoError(t, err)
	_, _, err = first.invocationContext(ctx, upload)
	require.NoError(t, err)
	first.close()

	// A new run starts with an empty in-memory artifact store; only the
	// session history in redis knows about the upload.
	second, err := newApp(ctx, cfg)
	require.NoError(t, err)
	defer second.close()
	turn, err := userContent("make cat.png bigger", nil)
	require.NoError(t, err)
	callCtx, inv, err := second.invocationContext(ctx, turn)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.Session.GetEventCount())

	ct, err := tool.Lookup(ctx, second.tools, image.ToolLoadImage)
	require.NoError(t, err)
	out, err := ct.Call(callCtx, []byte(`{"artifact_name":"cat.png"}`))
	require.NoError(t, err)
	loaded, ok := out.(image.LoadImageOutput)
	require.True(t, ok)
	assert.Equal(t, string(resolver.SourceHistory), loaded.Source)
	assert.Equal(t, filepath.Join(cfg.ScratchDir, "cat.png"), loaded.Path)
	data, err := os.ReadFile(loaded.Path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestLoadTranscript(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "list.json")
	require.NoError(t, os.WriteFile(list, []byte(`[{"role":"user","parts":[{"text":"hi"}]},{"text":"again"}]`), 0o600))
	items, err := loadTranscript(list)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	single := filepath.Join(dir, "single.json")
	require.NoError(t, os.WriteFile(single, []byte(`{"file_data":{"file_uri":"gs://b/c.png"}}`), 0o600))
	items, err = loadTranscript(single)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[`), 0o600))
	_, err = loadTranscript(bad)
	assert.Error(t, err)
	_, err = loadTranscript(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestApp_LoadImageFromTranscript(t *testing.T) {
	ctx := context.Background()
	cfg := offlineConfig(t)
	a, err := newApp(ctx, cfg)
	require.NoError(t, err)
	defer a.close()

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"role":"user","parts":[
		{"inlineData":{"mimeType":"image/png","displayName":"cat.png","data":"`+
		base64.StdEncoding.EncodeToString(pngHeader)+`"}}]}]`), 0o600))
	items, err := loadTranscript(path)
	require.NoError(t, err)

	callCtx, _, err := a.invocationContext(ctx, nil, agent.WithInvocationTranscript(items))
	require.NoError(t, err)
	ct, err := tool.Lookup(ctx, a.tools, image.ToolLoadImage)
	require.NoError(t, err)
	out, err := ct.Call(callCtx, []byte(`{"artifact_name":"cat.png"}`))
	require.NoError(t, err)
	loaded, ok := out.(image.LoadImageOutput)
	require.True(t, ok)
	assert.Equal(t, string(resolver.SourceHistory), loaded.Source)
	data, err := os.ReadFile(loaded.Path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}
