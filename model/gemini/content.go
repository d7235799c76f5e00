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
	"strings"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-image-agent-go/log"
	"trpc.group/trpc-go/trpc-image-agent-go/model"
)

var _ model.ImageGenerator = (*ContentGenerator)(nil)

// ContentGenerator generates images with a Gemini image model through GenerateContent.
type ContentGenerator struct {
	cfg    Config
	models ModelsAPI
}

// NewContentGenerator creates a Gemini image generator. Empty config fields take
// the Gemini image defaults; the model is served from the global location.
func NewContentGenerator(ctx context.Context, cfg Config, opts ...Option) (*ContentGenerator, error) {
	cfg = cfg.withDefaults(DefaultGeminiImageModel, DefaultGeminiLocation)
	models, err := newModels(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	return &ContentGenerator{cfg: cfg, models: models}, nil
}

// Info implements model.ImageGenerator.
func (g *ContentGenerator) Info() model.Info {
	return model.Info{Name: g.cfg.Model, Location: g.cfg.Location}
}

// GenerateImages implements model.ImageGenerator. Every inline image of the first
// candidate is returned together with the model text.
func (g *ContentGenerator) GenerateImages(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	if req == nil {
		return nil, model.ErrNilRequest
	}
	ratio, err := model.NormalizeAspectRatio(req.AspectRatio)
	if err != nil {
		return nil, err
	}
	size := model.NormalizeImageSize(req.ImageSize)
	if size == "" {
		size = DefaultImageSize
	}
	log.Debugf("gemini: generating with model=%s aspect_ratio=%s image_size=%s", g.cfg.Model, ratio, size)

	resp, err := g.models.GenerateContent(ctx, g.cfg.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: ratio,
			ImageSize:   size,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", g.cfg.Model, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, fmt.Errorf("%w: no candidates", ErrGenerationStopped)
	}
	cand := resp.Candidates[0]
	if cand.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("%w: %s", ErrGenerationStopped, cand.FinishReason)
	}

	out := &model.GenerateResponse{}
	var texts []string
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				out.Images = append(out.Images, model.Image{
					Data:     part.InlineData.Data,
					MimeType: mimeOrDefault(part.InlineData.MIMEType),
				})
			}
			if part.Text != "" && !part.Thought {
				texts = append(texts, part.Text)
			}
		}
	}
	out.Text = strings.Join(texts, "\n")
	if len(out.Images) == 0 {
		return nil, model.ErrNoImage
	}
	return out, nil
}
