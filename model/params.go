//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"fmt"
	"slices"
	"strings"
)

// UpscaleFactor is a discrete upscale factor accepted by the upscale model.
type UpscaleFactor string

// Supported upscale factors.
const (
	UpscaleX2 UpscaleFactor = "x2"
	UpscaleX4 UpscaleFactor = "x4"
)

// ClampUpscaleFactor maps a requested numeric factor to a supported one.
// Factors of 4 or more become x4, anything else x2.
func ClampUpscaleFactor(f float64) UpscaleFactor {
	if f >= 4 {
		return UpscaleX4
	}
	return UpscaleX2
}

// DefaultAspectRatio is used when a request leaves the aspect ratio empty.
const DefaultAspectRatio = "1:1"

// AspectRatios lists the aspect ratios accepted by the image models.
var AspectRatios = []string{"1:1", "3:2", "2:3", "3:4", "4:3", "4:5", "5:4", "9:16", "16:9", "21:9"}

// NormalizeAspectRatio returns the aspect ratio to send, or ErrInvalidAspectRatio.
func NormalizeAspectRatio(ratio string) (string, error) {
	ratio = strings.TrimSpace(ratio)
	if ratio == "" {
		return DefaultAspectRatio, nil
	}
	if !slices.Contains(AspectRatios, ratio) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAspectRatio, ratio)
	}
	return ratio, nil
}

// NormalizeImageSize upper-cases a size such as "4k" to the "4K" form the models expect.
func NormalizeImageSize(size string) string {
	return strings.ToUpper(strings.TrimSpace(size))
}
