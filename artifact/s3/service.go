//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package s3 provides an Amazon S3 (or S3 compatible) implementation of the artifact service.
//
// Objects use the same layout as the COS backend, below an optional key prefix:
//
//	{prefix}/{app_name}/{user_id}/{session_id}/{filename}/{version}
//	{prefix}/{app_name}/{user_id}/user/{filename}/{version}
//
// Display names and remote URLs are kept in the "name" and "url" user metadata.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	iartifact "trpc.group/trpc-go/trpc-image-agent-go/internal/artifact"
)

const (
	metaName = "name"
	metaURL  = "url"
)

var (
	// ErrNilArtifact is returned when saving a nil artifact.
	ErrNilArtifact = errors.New("s3: nil artifact")
	// ErrBucketRequired is returned when the configuration names no bucket.
	ErrBucketRequired = errors.New("s3: bucket is required")
)

// Client is the subset of the S3 API used by the service. *s3.Client implements it.
type Client interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds configuration for the S3 artifact backend.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom endpoint URL for S3 compatible providers such as MinIO.
	Endpoint string
	// UsePathStyle forces path-style addressing.
	UsePathStyle bool
}

// Option configures the S3 artifact service.
type Option func(*options)

type options struct {
	client Client
}

// WithClient injects a pre-configured S3 client. The AWS default
// configuration chain is not consulted when a client is given.
func WithClient(c Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// Service is an S3 implementation of the artifact service.
type Service struct {
	client Client
	bucket string
	prefix string
}

// NewService creates an S3 artifact service. Credentials come from the AWS
// default credential chain (env vars, shared config, IAM role).
func NewService(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		c, err := newClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		o.client = c
	}
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Service{client: o.client, bucket: cfg.Bucket, prefix: prefix}, nil
}

func newClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsConfig, s3Opts...), nil
}

// SaveArtifact uploads a new version of the artifact.
func (s *Service) SaveArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string, art *artifact.Artifact) (int, error) {
	if art == nil {
		return 0, ErrNilArtifact
	}
	versions, err := s.ListVersions(ctx, sessionInfo, filename)
	if err != nil {
		return 0, fmt.Errorf("failed to list versions: %w", err)
	}
	version := iartifact.LatestVersion(versions) + 1

	mimeType := art.MimeType
	if mimeType == "" {
		mimeType = artifact.DefaultMimeType
	}
	meta := make(map[string]string)
	if art.Name != "" {
		meta[metaName] = url.QueryEscape(art.Name)
	}
	if art.URL != "" {
		meta[metaURL] = url.QueryEscape(art.URL)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(iartifact.BuildObjectName(sessionInfo, filename, version))),
		Body:        bytes.NewReader(art.Data),
		ContentType: aws.String(mimeType),
		Metadata:    meta,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload artifact: %w", err)
	}
	return version, nil
}

// LoadArtifact downloads a version of the artifact, the latest when version is nil.
// A missing artifact or version yields (nil, nil).
func (s *Service) LoadArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string, version *int) (*artifact.Artifact, error) {
	var target int
	if version == nil {
		versions, err := s.ListVersions(ctx, sessionInfo, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to list versions: %w", err)
		}
		if len(versions) == 0 {
			return nil, nil
		}
		target = iartifact.LatestVersion(versions)
	} else {
		target = *version
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(iartifact.BuildObjectName(sessionInfo, filename, target))),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to download artifact: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact data: %w", err)
	}
	mimeType := aws.ToString(out.ContentType)
	if mimeType == "" {
		mimeType = artifact.DefaultMimeType
	}
	name := unescape(out.Metadata[metaName])
	if name == "" {
		name = filename
	}
	return &artifact.Artifact{
		Data:     data,
		MimeType: mimeType,
		URL:      unescape(out.Metadata[metaURL]),
		Name:     name,
	}, nil
}

// ListArtifactKeys lists the session and user scoped filenames, sorted.
func (s *Service) ListArtifactKeys(ctx context.Context, sessionInfo artifact.SessionInfo) ([]string, error) {
	set := make(map[string]struct{})
	for _, scope := range []string{
		iartifact.BuildSessionPrefix(sessionInfo),
		iartifact.BuildUserNamespacePrefix(sessionInfo),
	} {
		keys, err := s.list(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to list artifacts under %q: %w", scope, err)
		}
		for _, key := range keys {
			if filename, _, ok := iartifact.ParseObjectName(scope, key); ok {
				set[filename] = struct{}{}
			}
		}
	}
	filenames := make([]string, 0, len(set))
	for f := range set {
		filenames = append(filenames, f)
	}
	sort.Strings(filenames)
	return filenames, nil
}

// DeleteArtifact deletes every version of the artifact.
func (s *Service) DeleteArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string) error {
	versions, err := s.ListVersions(ctx, sessionInfo, filename)
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}
	for _, v := range versions {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(iartifact.BuildObjectName(sessionInfo, filename, v))),
		})
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to delete artifact version %d: %w", v, err)
		}
	}
	return nil
}

// ListVersions lists the versions of the artifact, sorted ascending.
func (s *Service) ListVersions(ctx context.Context, sessionInfo artifact.SessionInfo, filename string) ([]int, error) {
	prefix := iartifact.BuildObjectNamePrefix(sessionInfo, filename)
	keys, err := s.list(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	scope := prefix[:len(prefix)-len(filename)-1]
	versions := make([]int, 0, len(keys))
	for _, key := range keys {
		if name, v, ok := iartifact.ParseObjectName(scope, key); ok && name == filename {
			versions = append(versions, v)
		}
	}
	sort.Ints(versions)
	return versions, nil
}

// list returns the object names under prefix with the configured key prefix removed.
func (s *Service) list(ctx context.Context, prefix string) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})
	var keys []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return keys, nil
			}
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), s.prefix))
		}
	}
	return keys, nil
}

func (s *Service) key(name string) string {
	return s.prefix + name
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func unescape(v string) string {
	if u, err := url.QueryUnescape(v); err == nil {
		return u
	}
	return v
}
