//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package function wraps typed Go functions as callable tools.
package function

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	itool "trpc.group/trpc-go/trpc-image-agent-go/internal/tool"
	"trpc.group/trpc-go/trpc-image-agent-go/tool"
)

var _ tool.CallableTool = (*FunctionTool[struct{}, struct{}])(nil)

// FunctionTool implements the CallableTool interface for executing functions with arguments.
// The input type I is decoded from the JSON arguments and the output O is returned as is.
type FunctionTool[I, O any] struct {
	name         string
	description  string
	inputSchema  *tool.Schema
	outputSchema *tool.Schema
	fn           func(context.Context, I) (O, error)
	unmarshaler  unmarshaler
}

// Option is a function that configures a FunctionTool.
type Option func(*functionToolOptions)

// functionToolOptions holds the configuration options for FunctionTool.
type functionToolOptions struct {
	name        string
	description string
	unmarshaler unmarshaler
}

// WithName sets the name of the function tool.
func WithName(name string) Option {
	return func(opts *functionToolOptions) {
		opts.name = name
	}
}

// WithDescription sets the description of the function tool.
func WithDescription(description string) Option {
	return func(opts *functionToolOptions) {
		opts.description = description
	}
}

// NewFunctionTool creates a FunctionTool for fn. The input and output schemas
// are generated from I and O.
func NewFunctionTool[I, O any](fn func(context.Context, I) (O, error), opts ...Option) *FunctionTool[I, O] {
	options := &functionToolOptions{
		unmarshaler: jsonUnmarshaler{},
	}
	for _, opt := range opts {
		opt(options)
	}

	var (
		emptyI I
		emptyO O
	)
	return &FunctionTool[I, O]{
		name:         options.name,
		description:  options.description,
		fn:           fn,
		unmarshaler:  options.unmarshaler,
		inputSchema:  itool.GenerateJSONSchema(reflect.TypeOf(emptyI)),
		outputSchema: itool.GenerateJSONSchema(reflect.TypeOf(emptyO)),
	}
}

// Call unmarshals jsonArgs into the input type and calls the wrapped function.
// Empty arguments decode to the zero input.
func (ft *FunctionTool[I, O]) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	var input I
	if len(jsonArgs) > 0 {
		if err := ft.unmarshaler.Unmarshal(jsonArgs, &input); err != nil {
			return nil, fmt.Errorf("tool %s: invalid arguments: %w", ft.name, err)
		}
	}
	if ft.fn == nil {
		return nil, fmt.Errorf("tool %s: no function", ft.name)
	}
	return ft.fn(ctx, input)
}

// Declaration returns the tool's declaration information.
func (ft *FunctionTool[I, O]) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:         ft.name,
		Description:  ft.description,
		InputSchema:  ft.inputSchema,
		OutputSchema: ft.outputSchema,
	}
}

type unmarshaler interface {
	Unmarshal([]byte, any) error
}

type jsonUnmarshaler struct{}

// Unmarshal unmarshals JSON data into the provided interface.
func (jsonUnmarshaler) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
