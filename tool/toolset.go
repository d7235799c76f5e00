//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package tool

import (
	"context"
	"fmt"
)

// ToolSet defines an interface for managing a set of tools.
// It provides methods to retrieve the current tools and to perform cleanup.
type ToolSet interface {
	// Tools returns a slice of Tool instances available in the set based on the provided context.
	Tools(context.Context) []Tool

	// Close releases any resources held by the ToolSet.
	Close() error

	// Name returns the name of the ToolSet for identification and conflict resolution.
	Name() string
}

// Lookup returns the callable tool of the set declared under name.
func Lookup(ctx context.Context, ts ToolSet, name string) (CallableTool, error) {
	for _, t := range ts.Tools(ctx) {
		decl := t.Declaration()
		if decl == nil || decl.Name != name {
			continue
		}
		ct, ok := t.(CallableTool)
		if !ok {
			return nil, fmt.Errorf("tool %s in set %s is not callable", name, ts.Name())
		}
		return ct, nil
	}
	return nil, fmt.Errorf("tool %s not found in set %s", name, ts.Name())
}

// Names lists the declared names of the tools in the set, in order.
func Names(ctx context.Context, ts ToolSet) []string {
	tools := ts.Tools(ctx)
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		if decl := t.Declaration(); decl != nil {
			names = append(names, decl.Name)
		}
	}
	return names
}
