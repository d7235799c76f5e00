//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package event

import (
	"time"

	"google.golang.org/genai"
)

// Option is a function that can be used to configure the Event.
type Option func(*Event)

// WithBranch sets the branch for the event.
func WithBranch(branch string) Option {
	return func(e *Event) {
		e.Branch = branch
	}
}

// WithContent sets the content for the event.
func WithContent(content *genai.Content) Option {
	return func(e *Event) {
		e.Content = content
	}
}

// WithStateDelta sets state delta for the event.
func WithStateDelta(stateDelta map[string][]byte) Option {
	return func(e *Event) {
		e.StateDelta = stateDelta
	}
}

// WithTimestamp overrides the generated timestamp.
func WithTimestamp(ts time.Time) Option {
	return func(e *Event) {
		e.Timestamp = ts
	}
}
