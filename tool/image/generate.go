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
	"fmt"
	"strings"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-image-agent-go/agent"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/log"
	"trpc.group/trpc-go/trpc-image-agent-go/model"
)

// Name prefixes of generated artifacts.
const (
	GeneratedPrefix       = "gen_"
	GeminiGeneratedPrefix = "gemini_gen_"
)

// GenerateInput is the input of generate_image.
type GenerateInput struct {
	Prompt      string `json:"prompt" jsonschema:"description=The text description of the image to generate"`
	AspectRatio string `json:"aspect_ratio,omitempty" jsonschema:"description=The aspect ratio of the image: 1:1 (default) 3:2 2:3 3:4 4:3 4:5 5:4 9:16 16:9 or 21:9"`
}

// GenerateGeminiInput is the input of generate_image_gemini.
type GenerateGeminiInput struct {
	Prompt      string `json:"prompt" jsonschema:"description=A text description of the image to generate"`
	AspectRatio string `json:"aspect_ratio,omitempty" jsonschema:"description=The aspect ratio of the image: 1:1 (default) 3:2 2:3 3:4 4:3 4:5 5:4 9:16 16:9 or 21:9"`
	ImageSize   string `json:"image_size,omitempty" jsonschema:"description=The output resolution: 1K 2K or 4K (default)"`
}

// GenerateOutput is the output of the generation tools.
type GenerateOutput struct {
	ArtifactNames []string `json:"artifact_names,omitempty"`
	Text          string   `json:"text,omitempty"`
	Message       string   `json:"message"`
}

// GenerateImage generates one image with Imagen and saves it as gen_<uuid>.png.
func (s *ToolSet) GenerateImage(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	out, err := s.generate(ctx, s.generator, GeneratedPrefix, &model.GenerateRequest{
		Prompt:      in.Prompt,
		AspectRatio: in.AspectRatio,
	})
	if err != nil || out.Message != "" {
		return out, err
	}
	out.Message = "Image generated successfully and saved as artifact: " + out.ArtifactNames[0]
	return out, nil
}

// GenerateImageGemini generates images with a Gemini image model and saves each
// as gemini_gen_<uuid>.png.
func (s *ToolSet) GenerateImageGemini(ctx context.Context, in GenerateGeminiInput) (GenerateOutput, error) {
	out, err := s.generate(ctx, s.geminiGenerator, GeminiGeneratedPrefix, &model.GenerateRequest{
		Prompt:      in.Prompt,
		AspectRatio: in.AspectRatio,
		ImageSize:   in.ImageSize,
	})
	if err != nil || out.Message != "" {
		return out, err
	}
	out.Message = "Image(s) generated successfully: " + strings.Join(out.ArtifactNames, ", ")
	if out.Text != "" {
		out.Message += " Model thought/text: " + out.Text
	}
	return out, nil
}

func (s *ToolSet) generate(ctx context.Context, g model.ImageGenerator, prefix string,
	req *model.GenerateRequest) (GenerateOutput, error) {
	tc, err := agent.NewToolContext(ctx)
	if err != nil {
		return GenerateOutput{}, err
	}
	if g == nil {
		return GenerateOutput{Message: "Error: image generation is not configured."}, nil
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return GenerateOutput{Message: "Error: a prompt is required."}, nil
	}
	if _, err := model.NormalizeAspectRatio(req.AspectRatio); err != nil {
		return GenerateOutput{Message: fmt.Sprintf("Error: %v. Valid values: %s",
			err, strings.Join(model.AspectRatios, ", "))}, nil
	}

	info := g.Info()
	log.Infof("starting image generation with model=%s prompt=%q aspect_ratio=%q", info.Name, req.Prompt, req.AspectRatio)
	resp, err := g.GenerateImages(ctx, req)
	if err != nil {
		log.Errorf("image generation with %s failed: %v", info.Name, err)
		return GenerateOutput{Message: fmt.Sprintf("Error generating image with %s: %v", info.Name, err)}, nil
	}

	out := GenerateOutput{Text: resp.Text}
	for _, img := range resp.Images {
		name := prefix + uuid.NewString() + ".png"
		mimeType := img.MimeType
		if mimeType == "" {
			mimeType = pngMimeType
		}
		if _, err := tc.SaveArtifact(name, &artifact.Artifact{Data: img.Data, MimeType: mimeType, Name: name}); err != nil {
			return GenerateOutput{
				ArtifactNames: out.ArtifactNames,
				Message:       fmt.Sprintf("Error saving generated image %s: %v", name, err),
			}, nil
		}
		log.Infof("saved generated image as artifact %s", name)
		out.ArtifactNames = append(out.ArtifactNames, name)
	}
	if len(out.ArtifactNames) == 0 {
		out.Message = "No image was generated in the response."
	}
	return out, nil
}
