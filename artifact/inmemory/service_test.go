//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
)

var testSession = artifact.SessionInfo{
	AppName:   "image_agent",
	UserID:    "user123",
	SessionID: "session456",
}

func TestSaveAndLoad_Versions(t *testing.T) {
	s := NewService()
	ctx := context.Background()

	missing, err := s.LoadArtifact(ctx, testSession, "cat.png", nil)
	require.NoError(t, err)
	assert.Nil(t, missing)

	versions := []*artifact.Artifact{
		{Data: []byte("v0"), MimeType: "image/png", Name: "cat.png"},
		{Data: []byte("v1"), MimeType: "image/png", Name: "cat.png"},
		{URL: "gs://bucket/cat.png", MimeType: "image/png", Name: "cat.png"},
	}
	for i, a := range versions {
		v, err := s.SaveArtifact(ctx, testSession, "cat.png", a)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}

	latest, err := s.LoadArtifact(ctx, testSession, "cat.png", nil)
	require.NoError(t, err)
	assert.Equal(t, versions[2], latest)

	for i, want := range versions {
		v := i
		got, err := s.LoadArtifact(ctx, testSession, "cat.png", &v)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	bad := 7
	_, err = s.LoadArtifact(ctx, testSession, "cat.png", &bad)
	assert.ErrorIs(t, err, ErrVersionNotFound)

	listed, err := s.ListVersions(ctx, testSession, "cat.png")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, listed)
}

func TestSaveArtifact_Nil(t *testing.T) {
	_, err := NewService().SaveArtifact(context.Background(), testSession, "x.png", nil)
	assert.ErrorIs(t, err, ErrNilArtifact)
}

func TestSaveArtifact_CopiesData(t *testing.T) {
	s := NewService()
	ctx := context.Background()
	buf := []byte("original")
	_, err := s.SaveArtifact(ctx, testSession, "x.png", &artifact.Artifact{Data: buf})
	require.NoError(t, err)

	copy(buf, "mutated!")
	got, err := s.LoadArtifact(ctx, testSession, "x.png", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got.Data)

	got.Data[0] = 'X'
	again, err := s.LoadArtifact(ctx, testSession, "x.png", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again.Data)
}

func TestListArtifactKeys_Scopes(t *testing.T) {
	s := NewService()
	ctx := context.Background()
	other := testSession
	other.SessionID = "other"
	a := &artifact.Artifact{Data: []byte("d")}

	keys, err := s.ListArtifactKeys(ctx, testSession)
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, name := range []string{"b.png", "a.png", "user:avatar.png"} {
		_, err := s.SaveArtifact(ctx, testSession, name, a)
		require.NoError(t, err)
	}
	_, err = s.SaveArtifact(ctx, other, "c.png", a)
	require.NoError(t, err)

	keys, err = s.ListArtifactKeys(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png", "user:avatar.png"}, keys)

	keys, err = s.ListArtifactKeys(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.png", "user:avatar.png"}, keys)

	shared, err := s.LoadArtifact(ctx, other, "user:avatar.png", nil)
	require.NoError(t, err)
	assert.NotNil(t, shared)
}

func TestDeleteArtifact(t *testing.T) {
	s := NewService()
	ctx := context.Background()
	require.NoError(t, s.DeleteArtifact(ctx, testSession, "missing.png"))

	_, err := s.SaveArtifact(ctx, testSession, "x.png", &artifact.Artifact{Data: []byte("d")})
	require.NoError(t, err)
	require.NoError(t, s.DeleteArtifact(ctx, testSession, "x.png"))

	got, err := s.LoadArtifact(ctx, testSession, "x.png", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	versions, err := s.ListVersions(ctx, testSession, "x.png")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("file%d.png", i%5)
			_, err := s.SaveArtifact(ctx, testSession, name, &artifact.Artifact{Data: []byte{byte(i)}})
			assert.NoError(t, err)
			_, err = s.LoadArtifact(ctx, testSession, name, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	keys, err := s.ListArtifactKeys(ctx, testSession)
	require.NoError(t, err)
	assert.Len(t, keys, 5)
	for _, k := range keys {
		versions, err := s.ListVersions(ctx, testSession, k)
		require.NoError(t, err)
		assert.Len(t, versions, 4)
	}
}
