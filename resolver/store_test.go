//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/artifact/inmemory"
)

var testSession = artifact.SessionInfo{AppName: "image_agent", UserID: "user", SessionID: "session"}

// failingService wraps an artifact service and fails selected operations.
type failingService struct {
	artifact.Service
	loadErr error
	saveErr error
}

func (f *failingService) LoadArtifact(ctx context.Context, info artifact.SessionInfo, name string, version *int) (*artifact.Artifact, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.Service.LoadArtifact(ctx, info, name, version)
}

func (f *failingService) SaveArtifact(ctx context.Context, info artifact.SessionInfo, name string, a *artifact.Artifact) (int, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	return f.Service.SaveArtifact(ctx, info, name, a)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	svc := inmemory.NewService()
	s := NewSessionStore(svc, testSession)
	ctx := context.Background()

	_, ok := s.Get(ctx, "cat.png")
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "cat.png", artifact.InlineImage{Data: []byte("cat"), MimeType: "image/png"}))
	ref, ok := s.Get(ctx, "cat.png")
	require.True(t, ok)
	assert.Equal(t, artifact.InlineImage{Data: []byte("cat"), MimeType: "image/png", Name: "cat.png"}, ref)

	require.NoError(t, s.Put(ctx, "remote.png", artifact.RemoteImage{URI: "gs://b/remote.png"}))
	ref, ok = s.Get(ctx, "remote.png")
	require.True(t, ok)
	assert.Equal(t, artifact.RemoteImage{URI: "gs://b/remote.png", Name: "remote.png"}, ref)

	// Other sessions do not see session scoped artifacts.
	other := testSession
	other.SessionID = "other"
	_, ok = NewSessionStore(svc, other).Get(ctx, "cat.png")
	assert.False(t, ok)
}

func TestSessionStore_Failures(t *testing.T) {
	backendErr := errors.New("backend down")
	svc := &failingService{Service: inmemory.NewService(), loadErr: backendErr, saveErr: backendErr}
	s := NewSessionStore(svc, testSession)
	ctx := context.Background()

	_, ok := s.Get(ctx, "cat.png")
	assert.False(t, ok)

	err := s.Put(ctx, "cat.png", artifact.RawBytes("x"))
	assert.ErrorIs(t, err, ErrStorePersist)
	assert.ErrorIs(t, err, backendErr)

	err = NewSessionStore(inmemory.NewService(), testSession).Put(ctx, "cat.png", nil)
	assert.ErrorIs(t, err, ErrStorePersist)
}
