//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package gcs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-image-agent-go/storage/object"
)

func fakeFetcher(objects map[string]string, err error) *Fetcher {
	return &Fetcher{open: func(_ context.Context, bucket, name string) (io.ReadCloser, string, error) {
		if err != nil {
			return nil, "", err
		}
		data, ok := objects[bucket+"/"+name]
		if !ok {
			return nil, "", storage.ErrObjectNotExist
		}
		return io.NopCloser(strings.NewReader(data)), "image/png", nil
	}}
}

func TestFetch(t *testing.T) {
	f := fakeFetcher(map[string]string{"bucket/uploads/cat.png": "png"}, nil)
	obj, err := f.Fetch(context.Background(), "bucket", "uploads/cat.png")
	require.NoError(t, err)
	assert.Equal(t, &object.Object{Data: []byte("png"), ContentType: "image/png"}, obj)
}

func TestFetch_NotFound(t *testing.T) {
	f := fakeFetcher(nil, nil)
	_, err := f.Fetch(context.Background(), "bucket", "missing.png")
	assert.ErrorIs(t, err, object.ErrObjectNotFound)
}

func TestFetch_OpenError(t *testing.T) {
	cause := errors.New("permission denied")
	f := fakeFetcher(nil, cause)
	_, err := f.Fetch(context.Background(), "bucket", "x.png")
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, object.ErrObjectNotFound)
}
