//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package cos provides a Tencent Cloud Object Storage (COS) implementation of the artifact service.
//
// The object name format used depends on whether the filename has a user namespace,
// below the optional WithKeyPrefix prefix:
//   - For files with user namespace (starting with "user:"):
//     {prefix}/{app_name}/{user_id}/user/{filename}/{version}
//   - For regular session-scoped files:
//     {prefix}/{app_name}/{user_id}/{session_id}/{filename}/{version}
//
// The display name and the remote URL of an artifact travel as the
// x-cos-meta-name and x-cos-meta-url object metadata.
//
// Authentication:
// The service requires COS credentials which can be provided via:
// - Environment variables: COS_SECRETID and COS_SECRETKEY (recommended)
// - Option functions: WithSecretID() and WithSecretKey()
//
// Example:
//
//	export COS_SECRETID="your-secret-id"
//	export COS_SECRETKEY="your-secret-key"
//
//	service, err := cos.NewService("artifacts", "https://bucket.cos.region.myqcloud.com")
package cos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	iartifact "trpc.group/trpc-go/trpc-image-agent-go/internal/artifact"
)

const (
	defaultTimeout = 60 * time.Second

	metaName = "x-cos-meta-name"
	metaURL  = "x-cos-meta-url"
)

// ErrNilArtifact is returned when saving a nil artifact.
var ErrNilArtifact = errors.New("cos: nil artifact")

// Service is a Tencent Cloud Object Storage implementation of the artifact service.
type Service struct {
	cosClient client
	prefix    string
}

// NewService creates a new COS artifact service.
//
// Credentials come from COS_SECRETID and COS_SECRETKEY unless WithSecretID and
// WithSecretKey are given. WithClient injects a pre-configured COS client and
// makes bucketURL irrelevant. name labels the store in errors.
func NewService(name, bucketURL string, opts ...Option) (*Service, error) {
	o := newOptions(opts)
	c, err := o.newClient(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("cos store %q: %w", name, err)
	}
	return &Service{cosClient: c, prefix: o.prefix()}, nil
}

// SaveArtifact saves an artifact to Tencent Cloud Object Storage.
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
	meta := make(http.Header)
	if art.Name != "" {
		meta.Set(metaName, url.QueryEscape(art.Name))
	}
	if art.URL != "" {
		meta.Set(metaURL, url.QueryEscape(art.URL))
	}

	objectName := iartifact.BuildObjectName(sessionInfo, filename, version)
	if err := s.cosClient.PutObject(ctx, s.key(objectName), bytes.NewReader(art.Data), mimeType, meta); err != nil {
		return 0, fmt.Errorf("failed to upload artifact: %w", err)
	}
	return version, nil
}

// LoadArtifact gets an artifact from Tencent Cloud Object Storage.
// A missing artifact or version yields (nil, nil).
func (s *Service) LoadArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string, version *int) (*artifact.Artifact, error) {
	var targetVersion int
	if version == nil {
		versions, err := s.ListVersions(ctx, sessionInfo, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to list versions: %w", err)
		}
		if len(versions) == 0 {
			return nil, nil
		}
		targetVersion = iartifact.LatestVersion(versions)
	} else {
		targetVersion = *version
	}

	objectName := iartifact.BuildObjectName(sessionInfo, filename, targetVersion)
	body, header, err := s.cosClient.GetObject(ctx, s.key(objectName))
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to download artifact: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact data: %w", err)
	}

	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = artifact.DefaultMimeType
	}
	name := unescapeMeta(header.Get(metaName))
	if name == "" {
		name = filename
	}
	return &artifact.Artifact{
		Data:     data,
		MimeType: contentType,
		URL:      unescapeMeta(header.Get(metaURL)),
		Name:     name,
	}, nil
}

// ListArtifactKeys lists all the artifact filenames within a session from COS.
func (s *Service) ListArtifactKeys(ctx context.Context, sessionInfo artifact.SessionInfo) ([]string, error) {
	filenameSet := make(map[string]struct{})
	for _, prefix := range []string{
		iartifact.BuildSessionPrefix(sessionInfo),
		iartifact.BuildUserNamespacePrefix(sessionInfo),
	} {
		keys, err := s.list(ctx, prefix)
		if err != nil && !cos.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to list artifacts under %q: %w", prefix, err)
		}
		for _, key := range keys {
			if filename, _, ok := iartifact.ParseObjectName(prefix, key); ok {
				filenameSet[filename] = struct{}{}
			}
		}
	}

	filenames := make([]string, 0, len(filenameSet))
	for filename := range filenameSet {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)
	return filenames, nil
}

// DeleteArtifact deletes every version of an artifact from COS.
func (s *Service) DeleteArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string) error {
	versions, err := s.ListVersions(ctx, sessionInfo, filename)
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}
	for _, version := range versions {
		objectName := iartifact.BuildObjectName(sessionInfo, filename, version)
		if err := s.cosClient.DeleteObject(ctx, s.key(objectName)); err != nil && !cos.IsNotFoundError(err) {
			return fmt.Errorf("failed to delete artifact version %d: %w", version, err)
		}
	}
	return nil
}

// ListVersions lists all versions of an artifact from COS, sorted ascending.
func (s *Service) ListVersions(ctx context.Context, sessionInfo artifact.SessionInfo, filename string) ([]int, error) {
	prefix := iartifact.BuildObjectNamePrefix(sessionInfo, filename)
	keys, err := s.list(ctx, prefix)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	scope := prefix[:len(prefix)-len(filename)-1]
	versions := make([]int, 0, len(keys))
	for _, key := range keys {
		name, version, ok := iartifact.ParseObjectName(scope, key)
		if ok && name == filename {
			versions = append(versions, version)
		}
	}
	sort.Ints(versions)
	return versions, nil
}

// list returns the object names under prefix with the key prefix removed.
func (s *Service) list(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.cosClient.ListObjects(ctx, s.key(prefix))
	if err != nil {
		return nil, err
	}
	for i, key := range keys {
		keys[i] = strings.TrimPrefix(key, s.prefix)
	}
	return keys, nil
}

func (s *Service) key(name string) string {
	return s.prefix + name
}

func unescapeMeta(v string) string {
	if v == "" {
		return ""
	}
	if u, err := url.QueryUnescape(v); err == nil {
		return u
	}
	return v
}
