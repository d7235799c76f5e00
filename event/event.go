//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package event provides the session events that make up conversation history.
package event

import (
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// Author values used by the image agent.
const (
	AuthorUser  = "user"
	AuthorAgent = "image_agent"
)

// Event represents an event in conversation between agents and users.
type Event struct {
	// Content is the conversation content carried by the event, possibly nil.
	Content *genai.Content `json:"content,omitempty"`

	// InvocationID is the invocation ID of the event.
	InvocationID string `json:"invocationId"`

	// Author is the author of the event.
	Author string `json:"author"`

	// ID is the unique identifier of the event.
	ID string `json:"id"`

	// Timestamp is the timestamp of the event.
	Timestamp time.Time `json:"timestamp"`

	// Branch is the branch identifier for hierarchical event filtering.
	Branch string `json:"branch,omitempty"`

	// StateDelta contains state changes to be applied to the session.
	StateDelta map[string][]byte `json:"stateDelta,omitempty"`
}

// HasImage reports whether the event content carries an inline or file part.
func (e *Event) HasImage() bool {
	if e == nil || e.Content == nil {
		return false
	}
	for _, p := range e.Content.Parts {
		if p != nil && (p.InlineData != nil || p.FileData != nil) {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the event.
// Part payloads are shared; the part and content structs are copied.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Content = cloneContent(e.Content)
	if e.StateDelta != nil {
		clone.StateDelta = make(map[string][]byte, len(e.StateDelta))
		for k, v := range e.StateDelta {
			clone.StateDelta[k] = make([]byte, len(v))
			copy(clone.StateDelta[k], v)
		}
	}
	return &clone
}

func cloneContent(c *genai.Content) *genai.Content {
	if c == nil {
		return nil
	}
	out := &genai.Content{Role: c.Role}
	if c.Parts != nil {
		out.Parts = make([]*genai.Part, len(c.Parts))
		for i, p := range c.Parts {
			if p == nil {
				continue
			}
			cp := *p
			out.Parts[i] = &cp
		}
	}
	return out
}

// New creates a new Event with generated ID and timestamp.
func New(invocationID, author string, opts ...Option) *Event {
	e := &Event{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		InvocationID: invocationID,
		Author:       author,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewContentEvent creates a new Event carrying content.
func NewContentEvent(invocationID, author string, content *genai.Content) *Event {
	return New(invocationID, author, WithContent(content))
}
