//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package object provides read access to cloud object storage addressed by
// URIs of the form scheme://container/path, e.g. gs://bucket/uploads/cat.png.
package object

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrInvalidURI is returned when a URI lacks a scheme, a container or a path.
	ErrInvalidURI = errors.New("object: invalid uri")
	// ErrObjectNotFound is returned by fetchers when the object does not exist.
	ErrObjectNotFound = errors.New("object: not found")
)

// Object is the content of a fetched object.
type Object struct {
	Data []byte
	// ContentType is the content type recorded by the storage service, possibly empty.
	ContentType string
}

// Fetcher reads one object from a storage service.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, container, path string) (*Object, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, container, path string) (*Object, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, container, path string) (*Object, error) {
	return f(ctx, container, path)
}

// URI is a parsed object URI.
type URI struct {
	Scheme    string
	Container string
	Path      string
}

// String returns the URI in scheme://container/path form.
func (u URI) String() string {
	return u.Scheme + "://" + u.Container + "/" + u.Path
}

// ParseURI splits uri into scheme, container and path. The remainder after
// "scheme://" is split once at the first "/"; both sides must be non-empty.
func ParseURI(uri string) (URI, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" {
		return URI{}, fmt.Errorf("%w: %q has no scheme", ErrInvalidURI, uri)
	}
	container, path, ok := strings.Cut(rest, "/")
	if !ok || container == "" || path == "" {
		return URI{}, fmt.Errorf("%w: %q needs both a container and an object path", ErrInvalidURI, uri)
	}
	return URI{Scheme: strings.ToLower(scheme), Container: container, Path: path}, nil
}

// Registry maps URI schemes to fetchers. The zero value is not usable; use NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher)}
}

// Register binds a fetcher to a scheme, replacing any earlier binding.
func (r *Registry) Register(scheme string, f Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[strings.ToLower(scheme)] = f
}

// Lookup returns the fetcher bound to scheme.
func (r *Registry) Lookup(scheme string) (Fetcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fetchers[strings.ToLower(scheme)]
	return f, ok
}

// Schemes returns the registered schemes, sorted.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemes := make([]string, 0, len(r.fetchers))
	for s := range r.fetchers {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}
