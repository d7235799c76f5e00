//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package image

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-image-agent-go/agent"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact/inmemory"
	"trpc.group/trpc-go/trpc-image-agent-go/model"
	"trpc.group/trpc-go/trpc-image-agent-go/resolver"
	"trpc.group/trpc-go/trpc-image-agent-go/session"
	"trpc.group/trpc-go/trpc-image-agent-go/tool"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fixture struct {
	ctx  context.Context
	svc  *inmemory.Service
	info artifact.SessionInfo
	dir  string
	inv  *agent.Invocation
}

func newFixture(t *testing.T, live *genai.Content) *fixture {
	t.Helper()
	sess := &session.Session{ID: "s1", AppName: "image_agent", UserID: "u1"}
	f := &fixture{
		svc:  inmemory.NewService(),
		info: sess.ArtifactInfo(),
		dir:  t.TempDir(),
	}
	f.inv = agent.NewInvocation(
		agent.WithInvocationSession(sess),
		agent.WithInvocationUserContent(live),
		agent.WithInvocationArtifactService(f.svc),
		agent.WithInvocationResolverOptions(resolver.WithMaterializer(resolver.NewMaterializer(f.dir))),
	)
	f.ctx = agent.NewInvocationContext(context.Background(), f.inv)
	return f
}

func (f *fixture) load(t *testing.T, name string) *artifact.Artifact {
	t.Helper()
	a, err := f.svc.LoadArtifact(context.Background(), f.info, name, nil)
	require.NoError(t, err)
	return a
}

func inlinePart(name string, data []byte) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: "image/png", DisplayName: name}}
}

func userContent(parts ...*genai.Part) *genai.Content {
	return &genai.Content{Role: string(genai.RoleUser), Parts: parts}
}

type fakeGenerator struct {
	resp *model.GenerateResponse
	err  error
	got  *model.GenerateRequest
}

func (g *fakeGenerator) GenerateImages(_ context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	g.got = req
	return g.resp, g.err
}

func (g *fakeGenerator) Info() model.Info { return model.Info{Name: "fake-imagen"} }

type fakeUpscaler struct {
	out *model.Image
	err error
	got *model.UpscaleRequest
}

func (u *fakeUpscaler) UpscaleImage(_ context.Context, req *model.UpscaleRequest) (*model.Image, error) {
	u.got = req
	return u.out, u.err
}

func (u *fakeUpscaler) Info() model.Info { return model.Info{Name: "fake-upscale"} }

func TestToolSet_Tools(t *testing.T) {
	ctx := context.Background()
	bare := NewToolSet()
	assert.Equal(t, "image", bare.Name())
	assert.NoError(t, bare.Close())
	assert.Equal(t, []string{ToolLoadImage, ToolDownloadFile}, tool.Names(ctx, bare))

	full := NewToolSet(
		WithGenerator(&fakeGenerator{}),
		WithGeminiGenerator(&fakeGenerator{}),
		WithUpscaler(&fakeUpscaler{}),
	)
	assert.Equal(t, []string{ToolLoadImage, ToolDownloadFile, ToolUpscaleImage, ToolGenerateImage, ToolGenerateGemini},
		tool.Names(ctx, full))

	load, err := tool.Lookup(ctx, full, ToolLoadImage)
	require.NoError(t, err)
	decl := load.Declaration()
	assert.Equal(t, []string{"artifact_name"}, decl.InputSchema.Required)

	upscale, err := tool.Lookup(ctx, full, ToolUpscaleImage)
	require.NoError(t, err)
	assert.Empty(t, upscale.Declaration().InputSchema.Required)
	assert.Contains(t, upscale.Declaration().InputSchema.Properties, "scale_factor")
}

func TestTools_RequireInvocation(t *testing.T) {
	ts := NewToolSet(WithGenerator(&fakeGenerator{}), WithUpscaler(&fakeUpscaler{}))
	ctx := context.Background()

	_, err := ts.LoadImage(ctx, LoadImageInput{ArtifactName: "a.png"})
	assert.ErrorIs(t, err, agent.ErrInvocationNotFound)
	_, err = ts.UpscaleImage(ctx, UpscaleInput{ArtifactName: "a.png"})
	assert.ErrorIs(t, err, agent.ErrInvocationNotFound)
	_, err = ts.GenerateImage(ctx, GenerateInput{Prompt: "x"})
	assert.ErrorIs(t, err, agent.ErrInvocationNotFound)
	_, err = ts.DownloadFile(ctx, DownloadInput{URL: "http://x", OutputFilename: "a.png"})
	assert.ErrorIs(t, err, agent.ErrInvocationNotFound)

	noStore := agent.NewInvocationContext(ctx, agent.NewInvocation())
	_, err = ts.LoadImage(noStore, LoadImageInput{ArtifactName: "a.png"})
	assert.ErrorIs(t, err, agent.ErrNoArtifactService)
}

func TestLoadImage(t *testing.T) {
	f := newFixture(t, userContent(&genai.Part{Text: "use dog.png"}, inlinePart("dog.png", pngHeader)))
	ts := NewToolSet()

	_, err := f.svc.SaveArtifact(f.ctx, f.info, "cat.png", &artifact.Artifact{Data: []byte("cat"), MimeType: "image/png"})
	require.NoError(t, err)

	out, err := ts.LoadImage(f.ctx, LoadImageInput{ArtifactName: "cat.png"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.dir, "cat.png"), out.Path)
	assert.Equal(t, string(resolver.SourceStore), out.Source)
	assert.Equal(t, "image/png", out.MimeType)

	out, err = ts.LoadImage(f.ctx, LoadImageInput{ArtifactName: "dog.png"})
	require.NoError(t, err)
	assert.Equal(t, string(resolver.SourceCurrentTurn), out.Source)
	assert.FileExists(t, out.Path)
	require.NotNil(t, f.load(t, "dog.png"))

	out, err = ts.LoadImage(f.ctx, LoadImageInput{ArtifactName: ""})
	require.NoError(t, err)
	assert.Empty(t, out.Path)
	assert.Equal(t, resolver.Describe("", resolver.ErrInvalidName), out.Message)
}

func TestLoadImage_Messages(t *testing.T) {
	ts := NewToolSet()

	f := newFixture(t, userContent(inlinePart("a.png", pngHeader), inlinePart("b.png", pngHeader)))
	out, err := ts.LoadImage(f.ctx, LoadImageInput{ArtifactName: "c.png"})
	require.NoError(t, err)
	assert.Empty(t, out.Path)
	assert.Contains(t, out.Message, "multiple images")

	f = newFixture(t, nil)
	out, err = ts.LoadImage(f.ctx, LoadImageInput{ArtifactName: "c.png"})
	require.NoError(t, err)
	assert.Contains(t, out.Message, "No image named \"c.png\" was found")

	f = newFixture(t, userContent(&genai.Part{FileData: &genai.FileData{FileURI: "gs://bucket/c.png"}}))
	out, err = ts.LoadImage(f.ctx, LoadImageInput{ArtifactName: "c.png"})
	require.NoError(t, err)
	assert.Contains(t, out.Message, "could not read it")
}

func TestLoadImage_ThroughCallableTool(t *testing.T) {
	f := newFixture(t, userContent(inlinePart("dog.png", pngHeader)))
	recorder := tracetest.NewSpanRecorder()
	ts := NewToolSet(WithTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")))

	ct, err := tool.Lookup(f.ctx, ts, ToolLoadImage)
	require.NoError(t, err)
	args, err := json.Marshal(LoadImageInput{ArtifactName: "dog.png"})
	require.NoError(t, err)
	res, err := ct.Call(f.ctx, args)
	require.NoError(t, err)
	out, ok := res.(LoadImageOutput)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(f.dir, "dog.png"), out.Path)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "execute_tool "+ToolLoadImage, spans[0].Name())
}

func TestUpscaleImage_FromArtifact(t *testing.T) {
	f := newFixture(t, userContent(inlinePart("dog.png", pngHeader)))
	up := &fakeUpscaler{out: &model.Image{Data: []byte("big"), MimeType: "image/png"}}
	ts := NewToolSet(WithUpscaler(up))

	out, err := ts.UpscaleImage(f.ctx, UpscaleInput{ArtifactName: "dog.png"})
	require.NoError(t, err)
	assert.Equal(t, "upscaled_dog.png", out.ArtifactName)
	assert.Equal(t, "x4", out.Factor)
	assert.Equal(t, "Your image has been upscaled to `upscaled_dog.png`.", out.Message)
	assert.Equal(t, pngHeader, up.got.Image.Data)
	assert.Equal(t, model.UpscaleX4, up.got.Factor)

	saved := f.load(t, "upscaled_dog.png")
	require.NotNil(t, saved)
	assert.Equal(t, []byte("big"), saved.Data)
	assert.Equal(t, "image/png", saved.MimeType)
	assert.NotNil(t, f.load(t, "dog.png"))

	assert.NoFileExists(t, filepath.Join(f.dir, "dog.png"))
	assert.FileExists(t, filepath.Join(f.dir, "upscaled_dog.png"))
	assert.Equal(t, filepath.Join(f.dir, "upscaled_dog.png"), out.Path)

	out, err = ts.UpscaleImage(f.ctx, UpscaleInput{ArtifactName: "dog.png", ScaleFactor: 3})
	require.NoError(t, err)
	assert.Equal(t, "x2", out.Factor)
	assert.Equal(t, 1, out.Version)
}

func TestUpscaleImage_FromPathAndErrors(t *testing.T) {
	f := newFixture(t, nil)
	up := &fakeUpscaler{out: &model.Image{Data: []byte("big")}}
	ts := NewToolSet(WithUpscaler(up))

	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))

	out, err := ts.UpscaleImage(f.ctx, UpscaleInput{ImagePath: path, ScaleFactor: 2})
	require.NoError(t, err)
	assert.Equal(t, "upscaled_photo.jpg.png", out.ArtifactName)
	assert.Equal(t, "x2", out.Factor)
	assert.FileExists(t, path)

	out, err = ts.UpscaleImage(f.ctx, UpscaleInput{ImagePath: filepath.Join(f.dir, "missing.png")})
	require.NoError(t, err)
	assert.Contains(t, out.Message, "Image file not found")

	out, err = ts.UpscaleImage(f.ctx, UpscaleInput{})
	require.NoError(t, err)
	assert.Equal(t, "Error: Please provide either `image_path` or `artifact_name`.", out.Message)

	out, err = ts.UpscaleImage(f.ctx, UpscaleInput{ArtifactName: "ghost.png"})
	require.NoError(t, err)
	assert.Contains(t, out.Message, "No image named \"ghost.png\"")
	assert.Empty(t, out.ArtifactName)

	up.err = errors.New("quota")
	out, err = ts.UpscaleImage(f.ctx, UpscaleInput{ImagePath: path})
	require.NoError(t, err)
	assert.Equal(t, "Error upscaling image: quota", out.Message)

	out, err = NewToolSet().UpscaleImage(f.ctx, UpscaleInput{ImagePath: path})
	require.NoError(t, err)
	assert.Contains(t, out.Message, "not configured")
}

func TestUpscaledName(t *testing.T) {
	assert.Equal(t, "upscaled_cat.png", UpscaledName("cat.png"))
	assert.Equal(t, "upscaled_cat.jpg.png", UpscaledName("cat.jpg"))
	assert.Equal(t, "upscaled_cat.png", UpscaledName("/tmp/in/cat.png"))
	assert.Equal(t, "upscaled_cat.png", UpscaledName("cat"))
}
