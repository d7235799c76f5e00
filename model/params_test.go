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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampUpscaleFactor(t *testing.T) {
	tests := []struct {
		in   float64
		want UpscaleFactor
	}{
		{in: 4, want: UpscaleX4},
		{in: 8, want: UpscaleX4},
		{in: 3.99, want: UpscaleX2},
		{in: 3, want: UpscaleX2},
		{in: 2, want: UpscaleX2},
		{in: 1, want: UpscaleX2},
		{in: 0, want: UpscaleX2},
		{in: -4, want: UpscaleX2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampUpscaleFactor(tt.in), "factor %v", tt.in)
	}
}

func TestNormalizeAspectRatio(t *testing.T) {
	got, err := NormalizeAspectRatio("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAspectRatio, got)

	for _, r := range AspectRatios {
		got, err := NormalizeAspectRatio(" " + r + " ")
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err = NormalizeAspectRatio("7:3")
	assert.ErrorIs(t, err, ErrInvalidAspectRatio)
}

func TestNormalizeImageSize(t *testing.T) {
	assert.Equal(t, "4K", NormalizeImageSize("4k"))
	assert.Equal(t, "2K", NormalizeImageSize(" 2K "))
	assert.Equal(t, "", NormalizeImageSize(""))
}
