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
)

type invocationKey struct{}

// InvocationContext carries the invocation information.
type InvocationContext struct {
	context.Context
}

// NewInvocationContext returns a context carrying the invocation, for tools to pick up.
func NewInvocationContext(ctx context.Context, invocation *Invocation) *InvocationContext {
	return &InvocationContext{
		Context: context.WithValue(ctx, invocationKey{}, invocation),
	}
}

// InvocationFromContext returns the invocation from the context.
func InvocationFromContext(ctx context.Context) (*Invocation, bool) {
	if ctx == nil {
		return nil, false
	}
	invocation, ok := ctx.Value(invocationKey{}).(*Invocation)
	return invocation, ok
}
