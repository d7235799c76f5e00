//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package gemini implements the image collaborators on top of the Google GenAI SDK
// (Vertex AI backend): Imagen generation, Gemini image generation and Imagen upscale.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-image-agent-go/model"
)

// Default model names and locations.
const (
	DefaultImagenModel      = "imagen-4.0-generate-001"
	DefaultGeminiImageModel = "gemini-3-pro-image-preview"
	DefaultUpscaleModel     = "imagen-4.0-upscale-preview"
	DefaultLocation         = "us-central1"
	DefaultGeminiLocation   = "global"
	DefaultImageSize        = "4K"

	defaultMimeType = "image/png"
)

// ErrGenerationStopped is returned when the Gemini model stops for a reason other than STOP.
var ErrGenerationStopped = errors.New("gemini: generation stopped")

// ModelsAPI is the subset of *genai.Models used by this package.
type ModelsAPI interface {
	GenerateImages(ctx context.Context, model, prompt string,
		config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	UpscaleImage(ctx context.Context, model string, image *genai.Image, upscaleFactor string,
		config *genai.UpscaleImageConfig) (*genai.UpscaleImageResponse, error)
}

// Config selects the Vertex AI project, location and model of a collaborator.
type Config struct {
	Project  string
	Location string
	Model    string
}

func (c Config) withDefaults(model, location string) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.Location == "" {
		c.Location = location
	}
	return c
}

// Option configures a collaborator.
type Option func(*options)

type options struct {
	models ModelsAPI
}

// WithModels injects the models API instead of building a genai client.
func WithModels(m ModelsAPI) Option {
	return func(o *options) {
		o.models = m
	}
}

func newModels(ctx context.Context, cfg Config, opts []Option) (ModelsAPI, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.models != nil {
		return o.models, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  cfg.Project,
		Location: cfg.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return client.Models, nil
}

func mimeOrDefault(mimeType string) string {
	if mimeType == "" {
		return defaultMimeType
	}
	return mimeType
}

// collectGenerated turns generated images into model images, skipping empty ones.
// When nothing is left, the RAI filter reason is reported if the service gave one.
func collectGenerated(generated []*genai.GeneratedImage) ([]model.Image, error) {
	var (
		images   []model.Image
		filtered string
	)
	for _, gi := range generated {
		if gi == nil {
			continue
		}
		if gi.RAIFilteredReason != "" {
			filtered = gi.RAIFilteredReason
		}
		if gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		images = append(images, model.Image{
			Data:     gi.Image.ImageBytes,
			MimeType: mimeOrDefault(gi.Image.MIMEType),
		})
	}
	if len(images) == 0 {
		if filtered != "" {
			return nil, fmt.Errorf("%w: filtered: %s", model.ErrNoImage, filtered)
		}
		return nil, model.ErrNoImage
	}
	return images, nil
}
