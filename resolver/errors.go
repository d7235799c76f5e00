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
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when neither the store nor the conversation holds the artifact.
	ErrNotFound = errors.New("artifact not found")
	// ErrAmbiguousMatch is returned when several current turn images could be meant.
	// Errors carrying it also match ErrNotFound.
	ErrAmbiguousMatch = errors.New("ambiguous artifact match")
	// ErrInvalidReference is returned for malformed remote references or undecodable inline data.
	ErrInvalidReference = errors.New("invalid image reference")
	// ErrUnsupportedScheme is returned for remote references whose scheme has no fetcher.
	ErrUnsupportedScheme = errors.New("unsupported reference scheme")
	// ErrExtractionFailure is returned when a valid reference could not be fetched.
	ErrExtractionFailure = errors.New("image extraction failed")
	// ErrNoExtractableContent is returned for references that carry no content.
	ErrNoExtractableContent = errors.New("no extractable content")
	// ErrStorePersist is returned by Store.Put when the backend rejects the write.
	ErrStorePersist = errors.New("artifact store persist failed")
	// ErrInvalidName is returned for names that cannot be used as artifact names.
	ErrInvalidName = errors.New("invalid artifact name")
	// ErrNoMatch is returned by Matcher.Find when nothing in the conversation matches.
	ErrNoMatch = errors.New("no matching image")
)

// Outcome labels a resolution result for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrAmbiguousMatch):
		return "ambiguous"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, ErrUnsupportedScheme):
		return "unsupported_scheme"
	case errors.Is(err, ErrExtractionFailure):
		return "extraction_failure"
	case errors.Is(err, ErrNoExtractableContent):
		return "no_content"
	default:
		return "error"
	}
}

// Describe renders a resolution error as a message for the user of an agent.
// It tells apart a missing image, an image that could not be read, and an
// ambiguous request.
func Describe(name string, err error) string {
	switch {
	case err == nil:
		return fmt.Sprintf("Artifact %q resolved.", name)
	case errors.Is(err, ErrInvalidName):
		return fmt.Sprintf("%q is not a valid artifact name.", name)
	case errors.Is(err, ErrAmbiguousMatch):
		return fmt.Sprintf("No image named %q was found and multiple images are present. Please specify which one to use.", name)
	case errors.Is(err, ErrNotFound):
		return fmt.Sprintf("No image named %q was found in the session artifacts or the conversation.", name)
	case errors.Is(err, ErrInvalidReference),
		errors.Is(err, ErrUnsupportedScheme),
		errors.Is(err, ErrExtractionFailure),
		errors.Is(err, ErrNoExtractableContent):
		return fmt.Sprintf("Found %q but could not read it: %v", name, err)
	default:
		return fmt.Sprintf("Could not resolve %q: %v", name, err)
	}
}
