//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package s3 fetches s3:// objects from Amazon S3 or an S3 compatible service.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"trpc.group/trpc-go/trpc-image-agent-go/storage/object"
)

// Scheme is the URI scheme served by this package.
const Scheme = "s3"

// GetObjectAPI is the part of the S3 API the fetcher needs. *s3.Client implements it.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config configures the client created by NewFromConfig.
type Config struct {
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// Fetcher reads objects through an S3 client.
type Fetcher struct {
	client GetObjectAPI
}

var _ object.Fetcher = (*Fetcher)(nil)

// New wraps an existing client.
func New(client GetObjectAPI) *Fetcher {
	return &Fetcher{client: client}
}

// NewFromConfig builds a client from the AWS default credential chain.
func NewFromConfig(ctx context.Context, cfg Config) (*Fetcher, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return New(client), nil
}

// Fetch implements object.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, bucket, key string) (*object.Object, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", object.ErrObjectNotFound, bucket, key)
		}
		return nil, fmt.Errorf("s3: get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read s3://%s/%s: %w", bucket, key, err)
	}
	return &object.Object{Data: data, ContentType: aws.ToString(out.ContentType)}, nil
}
