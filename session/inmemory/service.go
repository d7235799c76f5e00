//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides in-memory session service implementation.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-image-agent-go/event"
	"trpc.group/trpc-go/trpc-image-agent-go/session"
)

var _ session.Service = (*SessionService)(nil)

// appSessions maps userID to sessions of one app.
type appSessions struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*session.Session
}

func newAppSessions() *appSessions {
	return &appSessions{sessions: make(map[string]map[string]*session.Session)}
}

// SessionService provides an in-memory implementation of session.Service.
type SessionService struct {
	mu   sync.RWMutex
	apps map[string]*appSessions
	opts serviceOpts
}

// NewSessionService creates a new in-memory session service.
func NewSessionService(options ...ServiceOpt) *SessionService {
	opts := serviceOpts{sessionEventLimit: defaultSessionEventLimit}
	for _, option := range options {
		option(&opts)
	}
	return &SessionService{
		apps: make(map[string]*appSessions),
		opts: opts,
	}
}

func (s *SessionService) getAppSessions(appName string) (*appSessions, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[appName]
	return app, ok
}

func (s *SessionService) getOrCreateAppSessions(appName string) *appSessions {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appName]
	if !ok {
		app = newAppSessions()
		s.apps[appName] = app
	}
	return app
}

// CreateSession creates a new session with the given parameters.
// An empty session ID is replaced by a generated one.
func (s *SessionService) CreateSession(
	ctx context.Context,
	key session.Key,
	state session.StateMap,
	opts ...session.Option,
) (*session.Session, error) {
	if err := key.CheckUserKey(); err != nil {
		return nil, err
	}
	if key.SessionID == "" {
		key.SessionID = uuid.New().String()
	}

	now := time.Now()
	sess := &session.Session{
		ID:        key.SessionID,
		AppName:   key.AppName,
		UserID:    key.UserID,
		State:     copyState(state),
		Events:    []event.Event{},
		UpdatedAt: now,
		CreatedAt: now,
	}

	app := s.getOrCreateAppSessions(key.AppName)
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.sessions[key.UserID] == nil {
		app.sessions[key.UserID] = make(map[string]*session.Session)
	}
	app.sessions[key.UserID][key.SessionID] = sess
	return copySession(sess), nil
}

// GetSession retrieves a session by app name, user ID, and session ID.
func (s *SessionService) GetSession(
	ctx context.Context,
	key session.Key,
	opts ...session.Option,
) (*session.Session, error) {
	if err := key.CheckSessionKey(); err != nil {
		return nil, err
	}
	app, ok := s.getAppSessions(key.AppName)
	if !ok {
		return nil, nil
	}

	app.mu.RLock()
	defer app.mu.RUnlock()
	sess, ok := app.sessions[key.UserID][key.SessionID]
	if !ok {
		return nil, nil
	}
	copied := copySession(sess)
	applyGetSessionOptions(copied, session.ApplyOptions(opts...))
	return copied, nil
}

// ListSessions returns all sessions for a given app and user.
func (s *SessionService) ListSessions(
	ctx context.Context,
	userKey session.UserKey,
	opts ...session.Option,
) ([]*session.Session, error) {
	if err := userKey.CheckUserKey(); err != nil {
		return nil, err
	}
	app, ok := s.getAppSessions(userKey.AppName)
	if !ok {
		return []*session.Session{}, nil
	}

	app.mu.RLock()
	defer app.mu.RUnlock()
	opt := session.ApplyOptions(opts...)
	sessList := make([]*session.Session, 0, len(app.sessions[userKey.UserID]))
	for _, sess := range app.sessions[userKey.UserID] {
		copied := copySession(sess)
		applyGetSessionOptions(copied, opt)
		sessList = append(sessList, copied)
	}
	return sessList, nil
}

// DeleteSession removes a session from storage.
func (s *SessionService) DeleteSession(
	ctx context.Context,
	key session.Key,
	opts ...session.Option,
) error {
	if err := key.CheckSessionKey(); err != nil {
		return err
	}
	app, ok := s.getAppSessions(key.AppName)
	if !ok {
		return nil
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	userSessions, ok := app.sessions[key.UserID]
	if !ok {
		return nil
	}
	delete(userSessions, key.SessionID)
	if len(userSessions) == 0 {
		delete(app.sessions, key.UserID)
	}
	return nil
}

// AppendEvent appends an event to both the given session and the stored one.
func (s *SessionService) AppendEvent(
	ctx context.Context,
	sess *session.Session,
	evt *event.Event,
	opts ...session.Option,
) error {
	if sess == nil || evt == nil {
		return fmt.Errorf("append event: session and event are required")
	}
	key := session.Key{AppName: sess.AppName, UserID: sess.UserID, SessionID: sess.ID}
	if err := key.CheckSessionKey(); err != nil {
		return err
	}

	app, ok := s.getAppSessions(key.AppName)
	if !ok {
		return fmt.Errorf("app %s: %w", key.AppName, session.ErrSessionNotFound)
	}
	app.mu.Lock()
	defer app.mu.Unlock()
	stored, ok := app.sessions[key.UserID][key.SessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", key.SessionID, session.ErrSessionNotFound)
	}
	s.updateSessionState(stored, evt)
	if stored != sess {
		s.updateSessionState(sess, evt)
	}
	return nil
}

// Close closes the service.
func (s *SessionService) Close() error {
	return nil
}

func (s *SessionService) updateSessionState(sess *session.Session, evt *event.Event) {
	sess.EventMu.Lock()
	sess.Events = append(sess.Events, *evt)
	if s.opts.sessionEventLimit > 0 && len(sess.Events) > s.opts.sessionEventLimit {
		sess.Events = sess.Events[len(sess.Events)-s.opts.sessionEventLimit:]
	}
	sess.EventMu.Unlock()

	if len(evt.StateDelta) > 0 && sess.State == nil {
		sess.State = make(session.StateMap)
	}
	for k, v := range evt.StateDelta {
		copied := make([]byte, len(v))
		copy(copied, v)
		sess.State[k] = copied
	}
	sess.UpdatedAt = time.Now()
}

// copySession creates a copy of a session.
func copySession(sess *session.Session) *session.Session {
	sess.EventMu.RLock()
	defer sess.EventMu.RUnlock()
	copied := &session.Session{
		ID:        sess.ID,
		AppName:   sess.AppName,
		UserID:    sess.UserID,
		State:     copyState(sess.State),
		Events:    make([]event.Event, len(sess.Events)),
		UpdatedAt: sess.UpdatedAt,
		CreatedAt: sess.CreatedAt,
	}
	copy(copied.Events, sess.Events)
	return copied
}

func copyState(state session.StateMap) session.StateMap {
	copied := make(session.StateMap, len(state))
	for k, v := range state {
		value := make([]byte, len(v))
		copy(value, v)
		copied[k] = value
	}
	return copied
}

// applyGetSessionOptions applies filtering options to the session.
func applyGetSessionOptions(sess *session.Session, opts session.Options) {
	if opts.EventNum > 0 && len(sess.Events) > opts.EventNum {
		sess.Events = sess.Events[len(sess.Events)-opts.EventNum:]
	}
	if !opts.EventTime.IsZero() {
		var filtered []event.Event
		for _, e := range sess.Events {
			if !e.Timestamp.Before(opts.EventTime) {
				filtered = append(filtered, e)
			}
		}
		sess.Events = filtered
	}
}
