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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNew(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	content := genai.NewContentFromText("hello", genai.RoleUser)
	e := New("inv-1", AuthorUser,
		WithContent(content),
		WithBranch("root"),
		WithTimestamp(ts),
		WithStateDelta(map[string][]byte{"k": []byte("v")}),
	)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "inv-1", e.InvocationID)
	assert.Equal(t, AuthorUser, e.Author)
	assert.Equal(t, "root", e.Branch)
	assert.Equal(t, ts, e.Timestamp)
	assert.Same(t, content, e.Content)
	assert.Equal(t, []byte("v"), e.StateDelta["k"])

	other := NewContentEvent("inv-1", AuthorAgent, content)
	assert.NotEqual(t, e.ID, other.ID)
}

func TestHasImage(t *testing.T) {
	var nilEvent *Event
	assert.False(t, nilEvent.HasImage())
	assert.False(t, New("i", AuthorUser).HasImage())
	assert.False(t, NewContentEvent("i", AuthorUser, genai.NewContentFromText("x", genai.RoleUser)).HasImage())

	withBlob := NewContentEvent("i", AuthorUser, &genai.Content{Parts: []*genai.Part{
		nil,
		{InlineData: &genai.Blob{Data: []byte("png"), MIMEType: "image/png"}},
	}})
	assert.True(t, withBlob.HasImage())

	withFile := NewContentEvent("i", AuthorUser, &genai.Content{Parts: []*genai.Part{
		{FileData: &genai.FileData{FileURI: "gs://b/o.png"}},
	}})
	assert.True(t, withFile.HasImage())
}

func TestClone(t *testing.T) {
	var nilEvent *Event
	assert.Nil(t, nilEvent.Clone())

	orig := New("inv", AuthorUser,
		WithContent(&genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{
			{Text: "first"},
			nil,
		}}),
		WithStateDelta(map[string][]byte{"k": []byte("v")}),
	)
	clone := orig.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, orig, clone)

	clone.Content.Parts[0].Text = "changed"
	clone.Content.Role = string(genai.RoleModel)
	clone.StateDelta["k"][0] = 'x'
	assert.Equal(t, "first", orig.Content.Parts[0].Text)
	assert.Equal(t, string(genai.RoleUser), orig.Content.Role)
	assert.Equal(t, []byte("v"), orig.StateDelta["k"])
	assert.Nil(t, clone.Content.Parts[1])
}
