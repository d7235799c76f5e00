//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package inmemory

const defaultSessionEventLimit = 100

// serviceOpts is the options for session service.
type serviceOpts struct {
	// sessionEventLimit is the limit of events kept per session. 0 keeps all.
	sessionEventLimit int
}

// ServiceOpt is the option for the in-memory session service.
type ServiceOpt func(*serviceOpts)

// WithSessionEventLimit sets the limit of events in a session.
// Older events are dropped first; a non-positive limit keeps every event.
func WithSessionEventLimit(limit int) ServiceOpt {
	return func(opts *serviceOpts) {
		opts.sessionEventLimit = limit
	}
}
