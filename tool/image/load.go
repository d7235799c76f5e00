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

	"trpc.group/trpc-go/trpc-image-agent-go/agent"
	"trpc.group/trpc-go/trpc-image-agent-go/log"
	"trpc.group/trpc-go/trpc-image-agent-go/resolver"
)

// LoadImageInput is the input of load_image_from_artifact.
type LoadImageInput struct {
	ArtifactName string `json:"artifact_name" jsonschema:"description=The name of the artifact (e.g. image.png)"`
}

// LoadImageOutput is the output of load_image_from_artifact.
type LoadImageOutput struct {
	// Path is the local file holding the image, empty on failure.
	Path     string `json:"path,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Source   string `json:"source,omitempty"`
	Message  string `json:"message"`
}

// LoadImage resolves an artifact name to a local file.
func (s *ToolSet) LoadImage(ctx context.Context, in LoadImageInput) (LoadImageOutput, error) {
	tc, err := agent.NewToolContext(ctx)
	if err != nil {
		return LoadImageOutput{}, err
	}
	r, err := tc.Resolver()
	if err != nil {
		return LoadImageOutput{}, err
	}
	log.Infof("%s: loading %q", ToolLoadImage, in.ArtifactName)
	res, err := r.Resolve(ctx, in.ArtifactName, tc.Invocation().Conversation())
	if err != nil {
		log.Infof("%s: %q not loaded: %v", ToolLoadImage, in.ArtifactName, err)
		return LoadImageOutput{Message: resolver.Describe(in.ArtifactName, err)}, nil
	}
	return LoadImageOutput{
		Path:     res.Path,
		MimeType: res.MimeType,
		Source:   string(res.Source),
		Message:  fmt.Sprintf("Artifact %q loaded to %s", in.ArtifactName, res.Path),
	}, nil
}
