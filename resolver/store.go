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
	"fmt"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/log"
)

// Store is a key-value view of persisted image references.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the reference stored under name. Backend failures are reported as a miss.
	Get(ctx context.Context, name string) (artifact.Reference, bool)
	// Put stores ref under name. Failures wrap ErrStorePersist.
	Put(ctx context.Context, name string, ref artifact.Reference) error
}

// NewSessionStore adapts an artifact service to a Store scoped to one session.
func NewSessionStore(svc artifact.Service, info artifact.SessionInfo) Store {
	return &sessionStore{svc: svc, info: info}
}

type sessionStore struct {
	svc  artifact.Service
	info artifact.SessionInfo
}

func (s *sessionStore) Get(ctx context.Context, name string) (artifact.Reference, bool) {
	a, err := s.svc.LoadArtifact(ctx, s.info, name, nil)
	if err != nil {
		log.Warnf("artifact store: load %q failed, treating as missing: %v", name, err)
		return nil, false
	}
	if a == nil {
		return nil, false
	}
	return artifact.FromArtifact(a), true
}

func (s *sessionStore) Put(ctx context.Context, name string, ref artifact.Reference) error {
	a := artifact.ToArtifact(name, ref)
	if a == nil {
		return fmt.Errorf("%w: %q: unsupported reference %T", ErrStorePersist, name, ref)
	}
	if _, err := s.svc.SaveArtifact(ctx, s.info, name, a); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrStorePersist, name, err)
	}
	return nil
}
