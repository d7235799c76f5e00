//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package session provides the core session functionality.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-image-agent-go/artifact"
	"trpc.group/trpc-go/trpc-image-agent-go/event"
)

// StateMap is a map of state key-value pairs.
type StateMap map[string][]byte

var (
	// ErrAppNameRequired is the error for app name required.
	ErrAppNameRequired = errors.New("appName is required")
	// ErrUserIDRequired is the error for user id required.
	ErrUserIDRequired = errors.New("userID is required")
	// ErrSessionIDRequired is the error for session id required.
	ErrSessionIDRequired = errors.New("sessionID is required")
	// ErrSessionNotFound is returned when appending to a session the service does not hold.
	ErrSessionNotFound = errors.New("session not found")
)

// Session holds the ordered events of one conversation.
type Session struct {
	ID        string        `json:"id"`      // ID is the session id.
	AppName   string        `json:"appName"` // AppName is the app name.
	UserID    string        `json:"userID"`  // UserID is the user id.
	State     StateMap      `json:"state"`   // State is the session state.
	Events    []event.Event `json:"events"`  // Events is the session events, oldest first.
	EventMu   sync.RWMutex  `json:"-"`
	UpdatedAt time.Time     `json:"updatedAt"` // UpdatedAt is the last update time.
	CreatedAt time.Time     `json:"createdAt"` // CreatedAt is the creation time.
}

// GetEvents returns the session events.
func (sess *Session) GetEvents() []event.Event {
	sess.EventMu.RLock()
	defer sess.EventMu.RUnlock()

	eventsCopy := make([]event.Event, len(sess.Events))
	copy(eventsCopy, sess.Events)
	return eventsCopy
}

// GetEventCount returns the session event count.
func (sess *Session) GetEventCount() int {
	sess.EventMu.RLock()
	defer sess.EventMu.RUnlock()
	return len(sess.Events)
}

// History returns the contents of the session events in chronological order.
// Events without content are skipped.
func (sess *Session) History() []*genai.Content {
	sess.EventMu.RLock()
	defer sess.EventMu.RUnlock()

	var contents []*genai.Content
	for i := range sess.Events {
		if c := sess.Events[i].Content; c != nil {
			contents = append(contents, c)
		}
	}
	return contents
}

// ArtifactInfo returns the artifact scope of the session.
func (sess *Session) ArtifactInfo() artifact.SessionInfo {
	return artifact.SessionInfo{
		AppName:   sess.AppName,
		UserID:    sess.UserID,
		SessionID: sess.ID,
	}
}

// Options is the options for getting a session.
type Options struct {
	EventNum  int       // EventNum is the number of recent events.
	EventTime time.Time // EventTime is the after time.
}

// Option is the option for a session.
type Option func(*Options)

// WithEventNum is the option for the number of recent events.
func WithEventNum(num int) Option {
	return func(o *Options) {
		o.EventNum = num
	}
}

// WithEventTime is the option for the time of the recent events.
func WithEventTime(time time.Time) Option {
	return func(o *Options) {
		o.EventTime = time
	}
}

// ApplyOptions folds options into Options.
func ApplyOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Service is the interface that all session services must implement.
type Service interface {
	// CreateSession creates a new session.
	CreateSession(ctx context.Context, key Key, state StateMap, options ...Option) (*Session, error)

	// GetSession gets a session. A missing session yields (nil, nil).
	GetSession(ctx context.Context, key Key, options ...Option) (*Session, error)

	// ListSessions lists all sessions by user scope of session key.
	ListSessions(ctx context.Context, userKey UserKey, options ...Option) ([]*Session, error)

	// DeleteSession deletes a session.
	DeleteSession(ctx context.Context, key Key, options ...Option) error

	// AppendEvent appends an event to a session.
	AppendEvent(ctx context.Context, session *Session, event *event.Event, options ...Option) error

	// Close closes the service.
	Close() error
}

// Key is the key for a session.
type Key struct {
	AppName   string // app name
	UserID    string // user id
	SessionID string // session id
}

// CheckSessionKey checks if a session key is valid.
func (s *Key) CheckSessionKey() error {
	return checkSessionKey(s.AppName, s.UserID, s.SessionID)
}

// CheckUserKey checks if a user key is valid.
func (s *Key) CheckUserKey() error {
	return checkUserKey(s.AppName, s.UserID)
}

// UserKey is the key for a user.
type UserKey struct {
	AppName string // app name
	UserID  string // user id
}

// CheckUserKey checks if a user key is valid.
func (s *UserKey) CheckUserKey() error {
	return checkUserKey(s.AppName, s.UserID)
}

func checkSessionKey(appName, userID, sessionID string) error {
	if appName == "" {
		return ErrAppNameRequired
	}
	if userID == "" {
		return ErrUserIDRequired
	}
	if sessionID == "" {
		return ErrSessionIDRequired
	}
	return nil
}

func checkUserKey(appName, userID string) error {
	if appName == "" {
		return ErrAppNameRequired
	}
	if userID == "" {
		return ErrUserIDRequired
	}
	return nil
}
