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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"trpc.group/trpc-go/trpc-image-agent-go/agent"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/log"
	"trpc.group/trpc-go/trpc-image-agent-go/model"
	"trpc.group/trpc-go/trpc-image-agent-go/resolver"
)

// UpscaleInput is the input of upscale_image. One of ArtifactName and ImagePath is required.
type UpscaleInput struct {
	ArtifactName string  `json:"artifact_name,omitempty" jsonschema:"description=The name of the artifact to upscale. Use this if the image was generated or uploaded previously"`
	ImagePath    string  `json:"image_path,omitempty" jsonschema:"description=Local path to the image file"`
	ScaleFactor  float64 `json:"scale_factor,omitempty" jsonschema:"description=The factor to upscale by: 4 (default) or 2"`
}

// UpscaleOutput is the output of upscale_image.
type UpscaleOutput struct {
	ArtifactName string `json:"artifact_name,omitempty"`
	Version      int    `json:"version,omitempty"`
	Path         string `json:"path,omitempty"`
	Factor       string `json:"factor,omitempty"`
	Message      string `json:"message"`
}

// UpscaledName returns the artifact name of an upscaled image: "upscaled_" plus
// the base name of the source, with a ".png" suffix.
func UpscaledName(source string) string {
	name := "upscaled_" + filepath.Base(source)
	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}
	return name
}

// UpscaleImage upscales an artifact or a local file and saves the result as a new artifact.
func (s *ToolSet) UpscaleImage(ctx context.Context, in UpscaleInput) (UpscaleOutput, error) {
	tc, err := agent.NewToolContext(ctx)
	if err != nil {
		return UpscaleOutput{}, err
	}
	r, err := tc.Resolver()
	if err != nil {
		return UpscaleOutput{}, err
	}
	if s.upscaler == nil {
		return UpscaleOutput{Message: "Error: upscaling is not configured."}, nil
	}
	log.Infof("%s: started with image_path=%q artifact_name=%q scale_factor=%v",
		ToolUpscaleImage, in.ImagePath, in.ArtifactName, in.ScaleFactor)

	var (
		source model.Image
		base   string
	)
	switch {
	case in.ArtifactName != "":
		res, err := r.Resolve(ctx, in.ArtifactName, tc.Invocation().Conversation())
		if err != nil {
			return UpscaleOutput{Message: "Error: " + resolver.Describe(in.ArtifactName, err)}, nil
		}
		defer func() {
			if err := r.Materializer().Remove(res.Path); err != nil {
				log.Warnf("%s: removing %s: %v", ToolUpscaleImage, res.Path, err)
			}
		}()
		source = model.Image{Data: res.Data, MimeType: res.MimeType}
		base = in.ArtifactName
	case in.ImagePath != "":
		data, err := os.ReadFile(in.ImagePath)
		if errors.Is(err, fs.ErrNotExist) {
			return UpscaleOutput{Message: fmt.Sprintf("Error: Image file not found at %s", in.ImagePath)}, nil
		}
		if err != nil {
			return UpscaleOutput{Message: fmt.Sprintf("Error: reading %s: %v", in.ImagePath, err)}, nil
		}
		source = model.Image{Data: data, MimeType: pngMimeType}
		base = in.ImagePath
	default:
		return UpscaleOutput{Message: "Error: Please provide either `image_path` or `artifact_name`."}, nil
	}

	scale := in.ScaleFactor
	if scale == 0 {
		scale = defaultScaleFactor
	}
	factor := model.ClampUpscaleFactor(scale)
	log.Infof("%s: invoking %s with factor=%s", ToolUpscaleImage, s.upscaler.Info().Name, factor)
	img, err := s.upscaler.UpscaleImage(ctx, &model.UpscaleRequest{Image: source, Factor: factor})
	if err != nil {
		log.Errorf("%s: upscale failed: %v", ToolUpscaleImage, err)
		return UpscaleOutput{Message: fmt.Sprintf("Error upscaling image: %v", err)}, nil
	}

	name := UpscaledName(base)
	version, err := tc.SaveArtifact(name, &artifact.Artifact{Data: img.Data, MimeType: pngMimeType, Name: name})
	if err != nil {
		return UpscaleOutput{Message: fmt.Sprintf("Error saving upscaled image %s: %v", name, err)}, nil
	}
	path, err := r.Materializer().Materialize(name, img.Data)
	if err != nil {
		log.Warnf("%s: writing local copy of %s: %v", ToolUpscaleImage, name, err)
	}
	log.Infof("%s: completed, output %s version %d", ToolUpscaleImage, name, version)
	return UpscaleOutput{
		ArtifactName: name,
		Version:      version,
		Path:         path,
		Factor:       string(factor),
		Message:      fmt.Sprintf("Your image has been upscaled to `%s`.", name),
	}, nil
}
