//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package gcs fetches gs:// objects from Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"trpc.group/trpc-go/trpc-image-agent-go/storage/object"
)

// Scheme is the URI scheme served by this package.
const Scheme = "gs"

type openFunc func(ctx context.Context, bucket, name string) (io.ReadCloser, string, error)

// Fetcher reads objects through a Cloud Storage client.
type Fetcher struct {
	open openFunc
}

var _ object.Fetcher = (*Fetcher)(nil)

// New wraps an existing Cloud Storage client.
func New(client *storage.Client) *Fetcher {
	return &Fetcher{open: func(ctx context.Context, bucket, name string) (io.ReadCloser, string, error) {
		r, err := client.Bucket(bucket).Object(name).NewReader(ctx)
		if err != nil {
			return nil, "", err
		}
		return r, r.Attrs.ContentType, nil
	}}
}

// NewDefault creates a client from application default credentials.
func NewDefault(ctx context.Context) (*Fetcher, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: create client: %w", err)
	}
	return New(client), nil
}

// Fetch implements object.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, bucket, name string) (*object.Object, error) {
	r, contentType, err := f.open(ctx, bucket, name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("%w: gs://%s/%s", object.ErrObjectNotFound, bucket, name)
		}
		return nil, fmt.Errorf("gcs: open gs://%s/%s: %w", bucket, name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs: read gs://%s/%s: %w", bucket, name, err)
	}
	return &object.Object{Data: data, ContentType: contentType}, nil
}
