//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package agent

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/resolver"
	"trpc.group/trpc-go/trpc-image-agent-go/session"
)

var (
	// ErrInvocationNotFound is returned when the context carries no invocation.
	ErrInvocationNotFound = errors.New("invocation not found in context")
	// ErrNoArtifactService is returned when the invocation has no artifact service.
	ErrNoArtifactService = errors.New("artifact service is nil in invocation")
	// ErrNoSession is returned when the invocation has no usable session.
	ErrNoSession = errors.New("invocation has no session")
)

// CallbackContext provides a typed wrapper around context with agent-specific operations,
// like artifact management.
type CallbackContext struct {
	context.Context
	invocation *Invocation
	// State is the state of the current session.
	State session.StateMap
}

// NewCallbackContext creates a CallbackContext from a standard context.
// Returns an error if no invocation is found in the context.
func NewCallbackContext(ctx context.Context) (*CallbackContext, error) {
	invocation, ok := InvocationFromContext(ctx)
	if !ok || invocation == nil {
		return nil, ErrInvocationNotFound
	}
	state := make(session.StateMap)
	if invocation.Session != nil && invocation.Session.State != nil {
		state = invocation.Session.State
	}
	return &CallbackContext{
		Context:    ctx,
		invocation: invocation,
		State:      state,
	}, nil
}

// Invocation returns the invocation behind the context.
func (cc *CallbackContext) Invocation() *Invocation {
	return cc.invocation
}

// SaveArtifact saves an artifact and records it for the current session.
// It returns the version of the saved artifact.
func (cc *CallbackContext) SaveArtifact(filename string, artifact *artifact.Artifact) (int, error) {
	service, sessionInfo, err := cc.getArtifactServiceAndSessionInfo()
	if err != nil {
		return 0, err
	}
	return service.SaveArtifact(cc.Context, sessionInfo, filename, artifact)
}

// LoadArtifact loads an artifact attached to the current session.
// If version is nil, the latest version is returned. A missing artifact yields nil.
func (cc *CallbackContext) LoadArtifact(filename string, version *int) (*artifact.Artifact, error) {
	service, sessionInfo, err := cc.getArtifactServiceAndSessionInfo()
	if err != nil {
		return nil, err
	}
	return service.LoadArtifact(cc.Context, sessionInfo, filename, version)
}

// ListArtifacts lists the filenames of the artifacts attached to the current session.
func (cc *CallbackContext) ListArtifacts() ([]string, error) {
	service, sessionInfo, err := cc.getArtifactServiceAndSessionInfo()
	if err != nil {
		return nil, err
	}
	return service.ListArtifactKeys(cc.Context, sessionInfo)
}

// DeleteArtifact deletes an artifact from the current session.
func (cc *CallbackContext) DeleteArtifact(filename string) error {
	service, sessionInfo, err := cc.getArtifactServiceAndSessionInfo()
	if err != nil {
		return err
	}
	return service.DeleteArtifact(cc.Context, sessionInfo, filename)
}

// ListArtifactVersions lists all versions of an artifact.
func (cc *CallbackContext) ListArtifactVersions(filename string) ([]int, error) {
	service, sessionInfo, err := cc.getArtifactServiceAndSessionInfo()
	if err != nil {
		return nil, err
	}
	return service.ListVersions(cc.Context, sessionInfo, filename)
}

// Resolver returns a resolver bound to the artifact store of the current session.
func (cc *CallbackContext) Resolver() (*resolver.Resolver, error) {
	service, sessionInfo, err := cc.getArtifactServiceAndSessionInfo()
	if err != nil {
		return nil, err
	}
	store := resolver.NewSessionStore(service, sessionInfo)
	return resolver.New(store, cc.invocation.ResolverOptions...), nil
}

// ResolveArtifact resolves name against the session store and the conversation of the invocation.
func (cc *CallbackContext) ResolveArtifact(name string) (*resolver.Resolved, error) {
	r, err := cc.Resolver()
	if err != nil {
		return nil, err
	}
	return r.Resolve(cc.Context, name, cc.invocation.Conversation())
}

func (cc *CallbackContext) getArtifactServiceAndSessionInfo() (artifact.Service, artifact.SessionInfo, error) {
	service := cc.invocation.ArtifactService
	if service == nil {
		return nil, artifact.SessionInfo{}, ErrNoArtifactService
	}
	sess := cc.invocation.Session
	if sess == nil {
		return nil, artifact.SessionInfo{}, ErrNoSession
	}
	if sess.AppName == "" || sess.UserID == "" || sess.ID == "" {
		return nil, artifact.SessionInfo{}, fmt.Errorf(
			"%w: missing appName or userID or sessionID: appName=%s, userID=%s, sessionID=%s",
			ErrNoSession, sess.AppName, sess.UserID, sess.ID)
	}
	return service, sess.ArtifactInfo(), nil
}
