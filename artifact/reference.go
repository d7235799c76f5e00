//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package artifact

import (
	"strings"

	"google.golang.org/genai"
)

// Reference is an image reference found in a store or in conversation content.
// It is one of InlineImage, RemoteImage or RawBytes.
type Reference interface {
	// DisplayName returns the declared display name, or "" when none is declared.
	DisplayName() string

	isReference()
}

// InlineImage carries encoded image bytes inline.
type InlineImage struct {
	// Data holds the binary content.
	Data []byte
	// Encoded holds the base64 text form when the source was textual and Data is empty.
	Encoded string
	// MimeType is the declared MIME type, possibly empty.
	MimeType string
	// Name is the declared display name, possibly empty.
	Name string
}

// DisplayName implements Reference.
func (i InlineImage) DisplayName() string { return i.Name }

func (InlineImage) isReference() {}

// RemoteImage points at image content by URI, e.g. gs://bucket/path/cat.png.
type RemoteImage struct {
	URI      string
	MimeType string
	Name     string
}

// DisplayName implements Reference.
func (r RemoteImage) DisplayName() string { return r.Name }

// HasPathSuffix reports whether the final path segment of the URI equals name.
func (r RemoteImage) HasPathSuffix(name string) bool {
	return name != "" && strings.HasSuffix(r.URI, "/"+name)
}

func (RemoteImage) isReference() {}

// RawBytes is unannotated content without a declared name.
type RawBytes []byte

// DisplayName implements Reference.
func (RawBytes) DisplayName() string { return "" }

func (RawBytes) isReference() {}

// FromArtifact converts a stored artifact into a reference.
// An artifact holding only a URL becomes a RemoteImage, anything else an InlineImage.
func FromArtifact(a *Artifact) Reference {
	if a == nil {
		return nil
	}
	if len(a.Data) == 0 && a.URL != "" {
		return RemoteImage{URI: a.URL, MimeType: a.MimeType, Name: a.Name}
	}
	return InlineImage{Data: a.Data, MimeType: a.MimeType, Name: a.Name}
}

// ToArtifact converts a reference into an artifact that can be saved to a Service.
// The display name falls back to name when the reference declares none.
func ToArtifact(name string, ref Reference) *Artifact {
	switch r := ref.(type) {
	case InlineImage:
		a := &Artifact{Data: r.Data, MimeType: r.MimeType, Name: orDefault(r.Name, name)}
		if len(a.Data) == 0 && r.Encoded != "" {
			if data, err := DecodeBase64(r.Encoded); err == nil {
				a.Data = data
			}
		}
		return a
	case RemoteImage:
		return &Artifact{URL: r.URI, MimeType: r.MimeType, Name: orDefault(r.Name, name)}
	case RawBytes:
		return &Artifact{Data: []byte(r), MimeType: DefaultMimeType, Name: name}
	default:
		return nil
	}
}

// DecodePart decodes one conversation part into a reference.
//
// Accepted shapes are Reference values, *genai.Part, genai.Part, *genai.Blob,
// *genai.FileData, loosely typed maps as found in serialized transcripts,
// and []byte. A map carries its inline data as []byte or as base64 text.
// The boolean is false for parts that carry no image reference, such as text.
func DecodePart(v any) (Reference, bool) {
	switch p := v.(type) {
	case nil:
		return nil, false
	case Reference:
		return p, true
	case *genai.Part:
		if p == nil {
			return nil, false
		}
		return decodeGenaiPart(p)
	case genai.Part:
		return decodeGenaiPart(&p)
	case *genai.Blob:
		if p == nil {
			return nil, false
		}
		return InlineImage{Data: p.Data, MimeType: p.MIMEType, Name: p.DisplayName}, true
	case *genai.FileData:
		if p == nil || p.FileURI == "" {
			return nil, false
		}
		return RemoteImage{URI: p.FileURI, MimeType: p.MIMEType, Name: p.DisplayName}, true
	case map[string]any:
		return decodeMap(p)
	case []byte:
		if len(p) == 0 {
			return nil, false
		}
		return RawBytes(p), true
	default:
		return nil, false
	}
}

// DecodeContent decodes every image-bearing part of a content, in order.
func DecodeContent(c *genai.Content) []Reference {
	if c == nil {
		return nil
	}
	var refs []Reference
	for _, part := range c.Parts {
		if ref, ok := DecodePart(part); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// DecodeItem decodes a loosely typed conversation item, as produced by
// unmarshaling a serialized transcript into any. An item is a content map
// with a "parts" list, a list of items, or a single part accepted by DecodePart.
func DecodeItem(v any) []Reference {
	switch item := v.(type) {
	case []any:
		var refs []Reference
		for _, elem := range item {
			refs = append(refs, DecodeItem(elem)...)
		}
		return refs
	case map[string]any:
		if parts, ok := item["parts"].([]any); ok {
			return DecodeItem(parts)
		}
	case *genai.Content:
		return DecodeContent(item)
	}
	if ref, ok := DecodePart(v); ok {
		return []Reference{ref}
	}
	return nil
}

func decodeGenaiPart(p *genai.Part) (Reference, bool) {
	switch {
	case p.InlineData != nil:
		return DecodePart(p.InlineData)
	case p.FileData != nil:
		return DecodePart(p.FileData)
	default:
		return nil, false
	}
}

func decodeMap(m map[string]any) (Reference, bool) {
	if inline, ok := lookupMap(m, "inline_data", "inlineData"); ok {
		img := InlineImage{
			MimeType: lookupString(inline, "mime_type", "mimeType"),
			Name:     lookupString(inline, "display_name", "displayName"),
		}
		switch data := inline["data"].(type) {
		case []byte:
			img.Data = data
		case string:
			img.Encoded = data
		}
		return img, true
	}
	if file, ok := lookupMap(m, "file_data", "fileData"); ok {
		uri := lookupString(file, "file_uri", "fileUri")
		if uri == "" {
			return nil, false
		}
		return RemoteImage{
			URI:      uri,
			MimeType: lookupString(file, "mime_type", "mimeType"),
			Name:     lookupString(file, "display_name", "displayName"),
		}, true
	}
	return nil, false
}

func lookupMap(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if v, ok := m[k].(map[string]any); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
