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
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/storage/object"
)

// Content is the normalized form of an image reference.
type Content struct {
	Data     []byte
	MimeType string
}

// Extractor turns references into bytes. Remote references are fetched
// through the fetcher registered for their URI scheme.
type Extractor struct {
	fetchers *object.Registry
}

// NewExtractor creates an extractor. A nil registry supports no remote schemes.
func NewExtractor(fetchers *object.Registry) *Extractor {
	if fetchers == nil {
		fetchers = object.NewRegistry()
	}
	return &Extractor{fetchers: fetchers}
}

// Extract returns the bytes and MIME type of ref.
func (e *Extractor) Extract(ctx context.Context, ref artifact.Reference) (*Content, error) {
	switch r := ref.(type) {
	case artifact.InlineImage:
		return e.extractInline(r)
	case artifact.RemoteImage:
		return e.extractRemote(ctx, r)
	case artifact.RawBytes:
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: empty raw bytes", ErrNoExtractableContent)
		}
		return &Content{Data: []byte(r), MimeType: detectMimeType("", "", r)}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNoExtractableContent, ref)
	}
}

func (e *Extractor) extractInline(r artifact.InlineImage) (*Content, error) {
	data := r.Data
	if len(data) == 0 {
		if r.Encoded == "" {
			return nil, fmt.Errorf("%w: inline image without data", ErrNoExtractableContent)
		}
		decoded, err := artifact.DecodeBase64(r.Encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidReference, err)
		}
		data = decoded
	}
	return &Content{Data: data, MimeType: detectMimeType(r.MimeType, "", data)}, nil
}

func (e *Extractor) extractRemote(ctx context.Context, r artifact.RemoteImage) (*Content, error) {
	// A malformed URI is invalid whatever its scheme.
	uri, err := object.ParseURI(r.URI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}
	fetcher, ok := e.fetchers.Lookup(uri.Scheme)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrUnsupportedScheme, uri.Scheme, r.URI)
	}
	obj, err := fetcher.Fetch(ctx, uri.Container, uri.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtractionFailure, uri, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtractionFailure, uri, errors.New("fetcher returned no object"))
	}
	return &Content{Data: obj.Data, MimeType: detectMimeType(r.MimeType, obj.ContentType, obj.Data)}, nil
}

// detectMimeType prefers the declared type, then the type recorded by the
// storage service, then the type sniffed from the bytes.
func detectMimeType(declared, fetched string, data []byte) string {
	switch {
	case declared != "":
		return declared
	case fetched != "":
		return fetched
	case len(data) == 0:
		return artifact.DefaultMimeType
	default:
		return mimetype.Detect(data).String()
	}
}
