//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package model provides interfaces for the image generation and upscale collaborators.
package model

import (
	"context"
	"errors"
)

var (
	// ErrNilRequest is returned when a collaborator is called without a request.
	ErrNilRequest = errors.New("model: nil request")
	// ErrNoImage is returned when a model response carries no image.
	ErrNoImage = errors.New("model: no image in response")
	// ErrInvalidAspectRatio is returned for aspect ratios the models do not accept.
	ErrInvalidAspectRatio = errors.New("model: invalid aspect ratio")
)

// Image is one image produced or consumed by a model.
type Image struct {
	Data     []byte
	MimeType string
}

// GenerateRequest describes a text-to-image request.
type GenerateRequest struct {
	// Prompt is the text description of the image.
	Prompt string
	// AspectRatio is one of AspectRatios. Empty means DefaultAspectRatio.
	AspectRatio string
	// ImageSize is the requested output resolution, e.g. "2K". Models that do not
	// support it ignore it.
	ImageSize string
}

// GenerateResponse holds the images returned by a generation call.
type GenerateResponse struct {
	Images []Image
	// Text is the text the model returned alongside the images, if any.
	Text string
}

// ImageGenerator generates images from a prompt.
type ImageGenerator interface {
	// GenerateImages generates images for the request. A response without images
	// is reported as ErrNoImage.
	GenerateImages(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Info returns basic information about the model.
	Info() Info
}

// UpscaleRequest describes an upscale request.
type UpscaleRequest struct {
	Image  Image
	Factor UpscaleFactor
}

// ImageUpscaler raises the resolution of an image.
type ImageUpscaler interface {
	// UpscaleImage returns the upscaled image.
	UpscaleImage(ctx context.Context, req *UpscaleRequest) (*Image, error)

	// Info returns basic information about the model.
	Info() Info
}

// Info contains basic information about a model.
type Info struct {
	Name     string
	Location string
}
