//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-image-agent-go/model"
)

type fakeModels struct {
	images  *genai.GenerateImagesResponse
	content *genai.GenerateContentResponse
	upscale *genai.UpscaleImageResponse
	err     error

	gotModel   string
	gotPrompt  string
	gotFactor  string
	gotImage   *genai.Image
	gotImgCfg  *genai.GenerateImagesConfig
	gotContent []*genai.Content
	gotContCfg *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateImages(ctx context.Context, m, prompt string,
	cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.gotModel, f.gotPrompt, f.gotImgCfg = m, prompt, cfg
	return f.images, f.err
}

func (f *fakeModels) GenerateContent(ctx context.Context, m string, contents []*genai.Content,
	cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel, f.gotContent, f.gotContCfg = m, contents, cfg
	return f.content, f.err
}

func (f *fakeModels) UpscaleImage(ctx context.Context, m string, image *genai.Image, factor string,
	cfg *genai.UpscaleImageConfig) (*genai.UpscaleImageResponse, error) {
	f.gotModel, f.gotImage, f.gotFactor = m, image, factor
	return f.upscale, f.err
}

func TestImagenGenerator(t *testing.T) {
	fake := &fakeModels{images: &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{
		{Image: &genai.Image{ImageBytes: []byte("png")}},
		{Image: &genai.Image{ImageBytes: []byte("second"), MIMEType: "image/jpeg"}},
	}}}
	g, err := NewImagenGenerator(context.Background(), Config{Project: "p"}, WithModels(fake))
	require.NoError(t, err)
	assert.Equal(t, model.Info{Name: DefaultImagenModel, Location: DefaultLocation}, g.Info())

	resp, err := g.GenerateImages(context.Background(), &model.GenerateRequest{Prompt: "a cat", AspectRatio: "16:9"})
	require.NoError(t, err)
	require.Len(t, resp.Images, 1)
	assert.Equal(t, model.Image{Data: []byte("png"), MimeType: "image/png"}, resp.Images[0])
	assert.Equal(t, DefaultImagenModel, fake.gotModel)
	assert.Equal(t, "a cat", fake.gotPrompt)
	assert.EqualValues(t, 1, fake.gotImgCfg.NumberOfImages)
	assert.Equal(t, "16:9", fake.gotImgCfg.AspectRatio)
}

func TestImagenGenerator_Errors(t *testing.T) {
	ctx := context.Background()
	fake := &fakeModels{}
	g, err := NewImagenGenerator(ctx, Config{Model: "custom", Location: "europe-west4"}, WithModels(fake))
	require.NoError(t, err)
	assert.Equal(t, "custom", g.Info().Name)

	_, err = g.GenerateImages(ctx, nil)
	assert.ErrorIs(t, err, model.ErrNilRequest)

	_, err = g.GenerateImages(ctx, &model.GenerateRequest{Prompt: "x", AspectRatio: "2:1"})
	assert.ErrorIs(t, err, model.ErrInvalidAspectRatio)

	fake.images = &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{
		{RAIFilteredReason: "blocked"},
	}}
	_, err = g.GenerateImages(ctx, &model.GenerateRequest{Prompt: "x"})
	assert.ErrorIs(t, err, model.ErrNoImage)
	assert.Contains(t, err.Error(), "blocked")
	assert.Equal(t, model.DefaultAspectRatio, fake.gotImgCfg.AspectRatio)

	boom := errors.New("quota exceeded")
	fake.err = boom
	_, err = g.GenerateImages(ctx, &model.GenerateRequest{Prompt: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestContentGenerator(t *testing.T) {
	fake := &fakeModels{content: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		FinishReason: genai.FinishReasonStop,
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "thinking", Thought: true},
			{Text: "Here is your infographic."},
			{InlineData: &genai.Blob{Data: []byte("img1"), MIMEType: "image/png"}},
			nil,
			{InlineData: &genai.Blob{Data: []byte("img2")}},
		}},
	}}}}
	g, err := NewContentGenerator(context.Background(), Config{Project: "p"}, WithModels(fake))
	require.NoError(t, err)
	assert.Equal(t, model.Info{Name: DefaultGeminiImageModel, Location: DefaultGeminiLocation}, g.Info())

	resp, err := g.GenerateImages(context.Background(), &model.GenerateRequest{Prompt: "chart", AspectRatio: "4:3", ImageSize: "2k"})
	require.NoError(t, err)
	require.Len(t, resp.Images, 2)
	assert.Equal(t, []byte("img1"), resp.Images[0].Data)
	assert.Equal(t, "image/png", resp.Images[1].MimeType)
	assert.Equal(t, "Here is your infographic.", resp.Text)

	require.Len(t, fake.gotContent, 1)
	assert.Equal(t, "chart", fake.gotContent[0].Parts[0].Text)
	assert.Equal(t, []string{"IMAGE", "TEXT"}, fake.gotContCfg.ResponseModalities)
	assert.Equal(t, "4:3", fake.gotContCfg.ImageConfig.AspectRatio)
	assert.Equal(t, "2K", fake.gotContCfg.ImageConfig.ImageSize)

	_, err = g.GenerateImages(context.Background(), &model.GenerateRequest{Prompt: "chart"})
	require.NoError(t, err)
	assert.Equal(t, DefaultImageSize, fake.gotContCfg.ImageConfig.ImageSize)
}

func TestContentGenerator_FinishReasons(t *testing.T) {
	ctx := context.Background()
	fake := &fakeModels{}
	g, err := NewContentGenerator(ctx, Config{}, WithModels(fake))
	require.NoError(t, err)
	req := &model.GenerateRequest{Prompt: "x"}

	fake.content = &genai.GenerateContentResponse{}
	_, err = g.GenerateImages(ctx, req)
	assert.ErrorIs(t, err, ErrGenerationStopped)

	fake.content = &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}}
	_, err = g.GenerateImages(ctx, req)
	assert.ErrorIs(t, err, ErrGenerationStopped)
	assert.Contains(t, err.Error(), string(genai.FinishReasonSafety))

	fake.content = &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		FinishReason: genai.FinishReasonStop,
		Content:      genai.NewContentFromText("no picture today", genai.RoleModel),
	}}}
	_, err = g.GenerateImages(ctx, req)
	assert.ErrorIs(t, err, model.ErrNoImage)
}

func TestUpscaler(t *testing.T) {
	fake := &fakeModels{upscale: &genai.UpscaleImageResponse{GeneratedImages: []*genai.GeneratedImage{
		{Image: &genai.Image{ImageBytes: []byte("big"), MIMEType: "image/png"}},
	}}}
	u, err := NewUpscaler(context.Background(), Config{}, WithModels(fake))
	require.NoError(t, err)
	assert.Equal(t, DefaultUpscaleModel, u.Info().Name)

	img, err := u.UpscaleImage(context.Background(), &model.UpscaleRequest{
		Image:  model.Image{Data: []byte("small")},
		Factor: model.UpscaleX4,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("big"), img.Data)
	assert.Equal(t, "x4", fake.gotFactor)
	assert.Equal(t, []byte("small"), fake.gotImage.ImageBytes)
	assert.Equal(t, "image/png", fake.gotImage.MIMEType)

	_, err = u.UpscaleImage(context.Background(), &model.UpscaleRequest{Image: model.Image{Data: []byte("s")}})
	require.NoError(t, err)
	assert.Equal(t, "x2", fake.gotFactor)

	fake.upscale = &genai.UpscaleImageResponse{}
	_, err = u.UpscaleImage(context.Background(), &model.UpscaleRequest{})
	assert.ErrorIs(t, err, model.ErrNoImage)

	_, err = u.UpscaleImage(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrNilRequest)
}
