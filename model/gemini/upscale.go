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

var _ model.ImageUpscaler = (*Upscaler)(nil)

// Upscaler upscales images with an Imagen upscale model.
type Upscaler struct {
	cfg    Config
	models ModelsAPI
}

// NewUpscaler creates an upscaler. Empty config fields take the upscale defaults.
func NewUpscaler(ctx context.Context, cfg Config, opts ...Option) (*Upscaler, error) {
	cfg = cfg.withDefaults(DefaultUpscaleModel, DefaultLocation)
	models, err := newModels(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Upscaler{cfg: cfg, models: models}, nil
}

// Info implements model.ImageUpscaler.
func (u *Upscaler) Info() model.Info {
	return model.Info{Name: u.cfg.Model, Location: u.cfg.Location}
}

// UpscaleImage implements model.ImageUpscaler. An empty factor means x2.
func (u *Upscaler) UpscaleImage(ctx context.Context, req *model.UpscaleRequest) (*model.Image, error) {
	if req == nil {
		return nil, model.ErrNilRequest
	}
	factor := req.Factor
	if factor == "" {
		factor = model.UpscaleX2
	}
	log.Debugf("upscale: invoking model=%s factor=%s", u.cfg.Model, factor)
	resp, err := u.models.UpscaleImage(ctx, u.cfg.Model, &genai.Image{
		ImageBytes: req.Image.Data,
		MIMEType:   mimeOrDefault(req.Image.MimeType),
	}, string(factor), &genai.UpscaleImageConfig{})
	if err != nil {
		return nil, fmt.Errorf("upscale %s: %w", u.cfg.Model, err)
	}
	if resp == nil {
		return nil, model.ErrNoImage
	}
	images, err := collectGenerated(resp.GeneratedImages)
	if err != nil {
		return nil, err
	}
	return &images[0], nil
}
