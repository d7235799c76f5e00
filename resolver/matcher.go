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
	"fmt"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
)

// Source tells where a resolved reference was found.
type Source string

// Sources of a resolved reference.
const (
	SourceStore       Source = "store"
	SourceCurrentTurn Source = "current_turn"
	SourceHistory     Source = "history"
	SourceLenient     Source = "lenient"
)

// Conversation holds the two content pools searched for images.
// History is chronological. Nil contents are skipped.
type Conversation struct {
	CurrentTurn []*genai.Content
	History     []*genai.Content
	// Transcript holds loosely typed items of an earlier conversation, such
	// as a JSON export unmarshaled into any. It is searched after History
	// and its matches report SourceHistory.
	Transcript []any
}

// Match is a reference found in a conversation.
type Match struct {
	Ref    artifact.Reference
	Source Source
}

// Matcher finds the image a name refers to within a conversation.
//
// An exact phase scans the current turn and then the history for a part whose
// declared name equals the requested name, or whose URI ends with "/" + name.
// When nothing matches, a lenient phase accepts the only image of the current
// turn. Several current turn images give ErrAmbiguousMatch.
type Matcher struct{}

type pool struct {
	refs   [][]artifact.Reference
	source Source
}

// Find returns the reference name refers to, or ErrNoMatch / ErrAmbiguousMatch.
func (Matcher) Find(name string, conv Conversation) (Match, error) {
	current := pool{refs: decodeAll(conv.CurrentTurn), source: SourceCurrentTurn}
	history := pool{refs: append(decodeAll(conv.History), decodeTranscript(conv.Transcript)...), source: SourceHistory}

	if name != "" {
		for _, p := range []pool{current, history} {
			for _, refs := range p.refs {
				for _, ref := range refs {
					if matchesName(ref, name) {
						return Match{Ref: ref, Source: p.source}, nil
					}
				}
			}
		}
	}

	var candidates []artifact.Reference
	for _, refs := range current.refs {
		candidates = append(candidates, refs...)
	}
	switch len(candidates) {
	case 0:
		return Match{}, fmt.Errorf("%w for %q", ErrNoMatch, name)
	case 1:
		return Match{Ref: candidates[0], Source: SourceLenient}, nil
	default:
		return Match{}, fmt.Errorf("%w: %d current turn images and none named %q", ErrAmbiguousMatch, len(candidates), name)
	}
}

func matchesName(ref artifact.Reference, name string) bool {
	if ref.DisplayName() == name {
		return true
	}
	remote, ok := ref.(artifact.RemoteImage)
	return ok && remote.HasPathSuffix(name)
}

// decodeAll decodes every content once, keeping content order.
func decodeAll(contents []*genai.Content) [][]artifact.Reference {
	out := make([][]artifact.Reference, 0, len(contents))
	for _, c := range contents {
		if refs := artifact.DecodeContent(c); len(refs) > 0 {
			out = append(out, refs)
		}
	}
	return out
}

func decodeTranscript(items []any) [][]artifact.Reference {
	out := make([][]artifact.Reference, 0, len(items))
	for _, item := range items {
		if refs := artifact.DecodeItem(item); len(refs) > 0 {
			out = append(out, refs)
		}
	}
	return out
}
