//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory implementation of the artifact service.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	iartifact "trpc.group/trpc-go/trpc-image-agent-go/internal/artifact"
)

var _ artifact.Service = (*Service)(nil)

var (
	// ErrNilArtifact is returned when saving a nil artifact.
	ErrNilArtifact = errors.New("inmemory: artifact is nil")
	// ErrVersionNotFound is returned when loading a version that was never saved.
	ErrVersionNotFound = errors.New("inmemory: version does not exist")
)

// Service is an in-memory implementation of the artifact service.
// It stores private copies of the saved artifacts, so callers may reuse their
// buffers after saving. It is suitable for tests, local runs and single process
// deployments.
type Service struct {
	mu sync.RWMutex
	// artifacts maps an artifact path to its versions, oldest first.
	artifacts map[string][]*artifact.Artifact
}

// NewService creates a new in-memory artifact service.
func NewService() *Service {
	return &Service{
		artifacts: make(map[string][]*artifact.Artifact),
	}
}

// SaveArtifact saves an artifact to the in-memory storage.
func (s *Service) SaveArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string, art *artifact.Artifact) (int, error) {
	if art == nil {
		return 0, ErrNilArtifact
	}
	path := iartifact.BuildArtifactPath(sessionInfo, filename)

	s.mu.Lock()
	defer s.mu.Unlock()
	version := len(s.artifacts[path])
	s.artifacts[path] = append(s.artifacts[path], clone(art))
	return version, nil
}

// LoadArtifact gets an artifact from the in-memory storage.
func (s *Service) LoadArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string, version *int) (*artifact.Artifact, error) {
	path := iartifact.BuildArtifactPath(sessionInfo, filename)

	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.artifacts[path]
	if len(versions) == 0 {
		return nil, nil
	}
	if version == nil {
		return clone(versions[len(versions)-1]), nil
	}
	if *version < 0 || *version >= len(versions) {
		return nil, fmt.Errorf("%w: %s version %d", ErrVersionNotFound, filename, *version)
	}
	return clone(versions[*version]), nil
}

// ListArtifactKeys lists all the artifact filenames within a session,
// including the user-namespaced ones.
func (s *Service) ListArtifactKeys(ctx context.Context, sessionInfo artifact.SessionInfo) ([]string, error) {
	sessionPrefix := iartifact.BuildSessionPrefix(sessionInfo)
	userPrefix := iartifact.BuildUserNamespacePrefix(sessionInfo)

	s.mu.RLock()
	defer s.mu.RUnlock()
	filenames := make([]string, 0)
	for path := range s.artifacts {
		switch {
		case strings.HasPrefix(path, sessionPrefix):
			filenames = append(filenames, strings.TrimPrefix(path, sessionPrefix))
		case strings.HasPrefix(path, userPrefix):
			filenames = append(filenames, strings.TrimPrefix(path, userPrefix))
		}
	}
	sort.Strings(filenames)
	return filenames, nil
}

// DeleteArtifact deletes an artifact.
func (s *Service) DeleteArtifact(ctx context.Context, sessionInfo artifact.SessionInfo, filename string) error {
	path := iartifact.BuildArtifactPath(sessionInfo, filename)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.artifacts, path)
	return nil
}

// ListVersions lists all versions of an artifact.
func (s *Service) ListVersions(ctx context.Context, sessionInfo artifact.SessionInfo, filename string) ([]int, error) {
	path := iartifact.BuildArtifactPath(sessionInfo, filename)

	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]int, len(s.artifacts[path]))
	for i := range result {
		result[i] = i
	}
	return result, nil
}

func clone(a *artifact.Artifact) *artifact.Artifact {
	c := *a
	if a.Data != nil {
		c.Data = append([]byte(nil), a.Data...)
	}
	return &c
}
