//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package artifact

import "context"

// Service defines the interface for artifact storage and retrieval operations.
//
// Artifacts are identified by the session info and a filename. Filenames with
// the "user:" prefix are scoped to the user instead of the session.
// Implementations must be safe for concurrent use.
type Service interface {
	// SaveArtifact stores a new version of the artifact and returns its revision.
	// The first version of an artifact has revision 0.
	SaveArtifact(ctx context.Context, sessionInfo SessionInfo, filename string, artifact *Artifact) (int, error)

	// LoadArtifact returns the given version of the artifact, or the latest one
	// when version is nil. A missing artifact yields (nil, nil).
	LoadArtifact(ctx context.Context, sessionInfo SessionInfo, filename string, version *int) (*Artifact, error)

	// ListArtifactKeys lists all the artifact filenames visible to a session, sorted.
	ListArtifactKeys(ctx context.Context, sessionInfo SessionInfo) ([]string, error)

	// DeleteArtifact deletes every version of an artifact. Deleting a missing
	// artifact is not an error.
	DeleteArtifact(ctx context.Context, sessionInfo SessionInfo, filename string) error

	// ListVersions lists all versions of an artifact.
	ListVersions(ctx context.Context, sessionInfo SessionInfo, filename string) ([]int, error)
}
