//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package agent carries the per-invocation state that tools read from the context.
package agent

import (
	"github.com/google/uuid"
	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/resolver"
	"trpc.group/trpc-go/trpc-image-agent-go/session"
)

// Invocation represents the context for one user turn.
type Invocation struct {
	// AgentName is the name of the agent that is being invoked.
	AgentName string
	// InvocationID is the ID of the invocation.
	InvocationID string
	// Branch is the branch identifier for hierarchical event filtering.
	Branch string
	// Session is the session that is being used for the invocation.
	Session *session.Session
	// UserContent is the content submitted by the user in the live turn.
	UserContent *genai.Content
	// ArtifactService is the service for managing artifacts.
	ArtifactService artifact.Service
	// ResolverOptions configure the resolver built for tool calls.
	ResolverOptions []resolver.Option
	// Transcript holds loosely typed items of an imported earlier conversation.
	Transcript []any
}

// InvocationOptions is the options for the Invocation.
type InvocationOptions func(*Invocation)

// WithInvocationID set invocation id for the Invocation.
func WithInvocationID(id string) InvocationOptions {
	return func(inv *Invocation) {
		inv.InvocationID = id
	}
}

// WithInvocationAgentName set agent name for the Invocation.
func WithInvocationAgentName(name string) InvocationOptions {
	return func(inv *Invocation) {
		inv.AgentName = name
	}
}

// WithInvocationBranch set branch for the Invocation.
func WithInvocationBranch(branch string) InvocationOptions {
	return func(inv *Invocation) {
		inv.Branch = branch
	}
}

// WithInvocationSession set session for the Invocation.
func WithInvocationSession(session *session.Session) InvocationOptions {
	return func(inv *Invocation) {
		inv.Session = session
	}
}

// WithInvocationUserContent set the live turn content for the Invocation.
func WithInvocationUserContent(content *genai.Content) InvocationOptions {
	return func(inv *Invocation) {
		inv.UserContent = content
	}
}

// WithInvocationArtifactService set artifact service for the Invocation.
func WithInvocationArtifactService(svc artifact.Service) InvocationOptions {
	return func(inv *Invocation) {
		inv.ArtifactService = svc
	}
}

// WithInvocationResolverOptions appends resolver options for the Invocation.
func WithInvocationResolverOptions(opts ...resolver.Option) InvocationOptions {
	return func(inv *Invocation) {
		inv.ResolverOptions = append(inv.ResolverOptions, opts...)
	}
}

// WithInvocationTranscript set the imported transcript for the Invocation.
func WithInvocationTranscript(items []any) InvocationOptions {
	return func(inv *Invocation) {
		inv.Transcript = items
	}
}

// NewInvocation creates a new Invocation. A missing ID is generated.
func NewInvocation(opts ...InvocationOptions) *Invocation {
	inv := &Invocation{}
	for _, opt := range opts {
		opt(inv)
	}
	if inv.InvocationID == "" {
		inv.InvocationID = uuid.New().String()
	}
	return inv
}

// Conversation returns the content pools searched by fallback resolution:
// the live user content and the session history.
func (inv *Invocation) Conversation() resolver.Conversation {
	var conv resolver.Conversation
	if inv.UserContent != nil {
		conv.CurrentTurn = []*genai.Content{inv.UserContent}
	}
	if inv.Session != nil {
		conv.History = inv.Session.History()
	}
	conv.Transcript = inv.Transcript
	return conv
}
