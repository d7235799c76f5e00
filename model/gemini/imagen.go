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
	"fmt"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-image-agent-go/log"
	"trpc.group/trpc-go/trpc-image-agent-go/model"
)

var _ model.ImageGenerator = (*ImagenGenerator)(nil)

// ImagenGenerator generates one image per request with an Imagen model.
type ImagenGenerator struct {
	cfg    Config
	models ModelsAPI
}

// NewImagenGenerator creates an Imagen generator. Empty config fields take the
// Imagen defaults.
func NewImagenGenerator(ctx context.Context, cfg Config, opts ...Option) (*ImagenGenerator, error) {
	cfg = cfg.withDefaults(DefaultImagenModel, DefaultLocation)
	models, err := newModels(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	return &ImagenGenerator{cfg: cfg, models: models}, nil
}

// Info implements model.ImageGenerator.
func (g *ImagenGenerator) Info() model.Info {
	return model.Info{Name: g.cfg.Model, Location: g.cfg.Location}
}

// GenerateImages implements model.ImageGenerator.
func (g *ImagenGenerator) GenerateImages(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	if req == nil {
		return nil, model.ErrNilRequest
	}
	ratio, err := model.NormalizeAspectRatio(req.AspectRatio)
	if err != nil {
		return nil, err
	}
	log.Debugf("imagen: generating with model=%s aspect_ratio=%s", g.cfg.Model, ratio)
	resp, err := g.models.GenerateImages(ctx, g.cfg.Model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    ratio,
	})
	if err != nil {
		return nil, fmt.Errorf("imagen %s: %w", g.cfg.Model, err)
	}
	if resp == nil {
		return nil, model.ErrNoImage
	}
	images, err := collectGenerated(resp.GeneratedImages)
	if err != nil {
		return nil, err
	}
	return &model.GenerateResponse{Images: images[:1]}, nil
}
