//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package redis provides a redis backed session service, so conversation
// history survives across processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"trpc.group/trpc-go/trpc-image-agent-go/event"
	"trpc.group/trpc-go/trpc-image-agent-go/session"
)

// ErrClientRequired is returned by NewService without a client or URL.
var ErrClientRequired = errors.New("redis session: a client or url is required")

var _ session.Service = (*Service)(nil)

// sessionState is the stored form of a session without its events.
type sessionState struct {
	ID        string           `json:"id"`
	State     session.StateMap `json:"state"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Service is the redis session service.
// storage structure:
// SessionState: appName + userId -> hash [sessionId -> sessionState(json)]
// Event: appName + userId + sessionId -> list [Event(json)], oldest first
type Service struct {
	client     redis.UniversalClient
	ownsClient bool
	eventLimit int
}

// NewService creates a redis session service.
func NewService(opts ...ServiceOpt) (*Service, error) {
	o := serviceOpts{sessionEventLimit: defaultSessionEventLimit}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Service{client: o.client, eventLimit: o.sessionEventLimit}
	if s.client == nil {
		if o.url == "" {
			return nil, ErrClientRequired
		}
		redisOpts, err := redis.ParseURL(o.url)
		if err != nil {
			return nil, fmt.Errorf("redis session: parse url: %w", err)
		}
		s.client = redis.NewClient(redisOpts)
		s.ownsClient = true
	}
	return s, nil
}

// CreateSession creates a new session. An empty session ID is replaced by a generated one.
func (s *Service) CreateSession(
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
	st := &sessionState{ID: key.SessionID, State: make(session.StateMap), CreatedAt: now, UpdatedAt: now}
	for k, v := range state {
		st.State[k] = v
	}
	if err := s.storeSessionState(ctx, s.client, key, st); err != nil {
		return nil, err
	}
	return newSession(key, st, []event.Event{}), nil
}

// GetSession gets a session with its events. A missing session yields (nil, nil).
func (s *Service) GetSession(
	ctx context.Context,
	key session.Key,
	opts ...session.Option,
) (*session.Session, error) {
	if err := key.CheckSessionKey(); err != nil {
		return nil, err
	}
	pipe := s.client.Pipeline()
	stateCmd := pipe.HGet(ctx, sessionStateKey(key), key.SessionID)
	eventsCmd := pipe.LRange(ctx, eventKey(key), 0, -1)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis session: get session %s: %w", key.SessionID, err)
	}
	st, err := decodeSessionState(stateCmd)
	if err != nil || st == nil {
		return nil, err
	}
	events, err := decodeEvents(eventsCmd)
	if err != nil {
		return nil, err
	}
	return newSession(key, st, filterEvents(events, session.ApplyOptions(opts...))), nil
}

// ListSessions lists the sessions of a user, oldest first.
func (s *Service) ListSessions(
	ctx context.Context,
	userKey session.UserKey,
	opts ...session.Option,
) ([]*session.Session, error) {
	if err := userKey.CheckUserKey(); err != nil {
		return nil, err
	}
	base := session.Key{AppName: userKey.AppName, UserID: userKey.UserID}
	raw, err := s.client.HGetAll(ctx, sessionStateKey(base)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis session: list sessions: %w", err)
	}
	states := make([]*sessionState, 0, len(raw))
	for _, v := range raw {
		st := &sessionState{}
		if err := json.Unmarshal([]byte(v), st); err != nil {
			return nil, fmt.Errorf("redis session: unmarshal session state: %w", err)
		}
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].CreatedAt.Before(states[j].CreatedAt) })

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringSliceCmd, len(states))
	for i, st := range states {
		key := base
		key.SessionID = st.ID
		cmds[i] = pipe.LRange(ctx, eventKey(key), 0, -1)
	}
	if len(states) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("redis session: list events: %w", err)
		}
	}

	opt := session.ApplyOptions(opts...)
	sessions := make([]*session.Session, 0, len(states))
	for i, st := range states {
		events, err := decodeEvents(cmds[i])
		if err != nil {
			return nil, err
		}
		key := base
		key.SessionID = st.ID
		sessions = append(sessions, newSession(key, st, filterEvents(events, opt)))
	}
	return sessions, nil
}

// DeleteSession deletes a session and its events.
func (s *Service) DeleteSession(
	ctx context.Context,
	key session.Key,
	opts ...session.Option,
) error {
	if err := key.CheckSessionKey(); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, sessionStateKey(key), key.SessionID)
	pipe.Del(ctx, eventKey(key))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis session: delete session %s: %w", key.SessionID, err)
	}
	return nil
}

// AppendEvent stores the event and appends it to sess.
func (s *Service) AppendEvent(
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
	st, err := decodeSessionState(s.client.HGet(ctx, sessionStateKey(key), key.SessionID))
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("session %s: %w", key.SessionID, session.ErrSessionNotFound)
	}
	if st.State == nil {
		st.State = make(session.StateMap)
	}
	for k, v := range evt.StateDelta {
		st.State[k] = v
	}
	st.UpdatedAt = time.Now()

	eventBytes, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("redis session: marshal event: %w", err)
	}
	pipe := s.client.TxPipeline()
	if err := s.storeSessionState(ctx, pipe, key, st); err != nil {
		return err
	}
	pipe.RPush(ctx, eventKey(key), eventBytes)
	if s.eventLimit > 0 {
		pipe.LTrim(ctx, eventKey(key), -int64(s.eventLimit), -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session: append event: %w", err)
	}

	sess.EventMu.Lock()
	sess.Events = append(sess.Events, *evt)
	if s.eventLimit > 0 && len(sess.Events) > s.eventLimit {
		sess.Events = sess.Events[len(sess.Events)-s.eventLimit:]
	}
	sess.EventMu.Unlock()
	if len(evt.StateDelta) > 0 && sess.State == nil {
		sess.State = make(session.StateMap)
	}
	for k, v := range evt.StateDelta {
		sess.State[k] = v
	}
	sess.UpdatedAt = st.UpdatedAt
	return nil
}

// Close closes the redis client when the service created it.
func (s *Service) Close() error {
	if s.ownsClient {
		return s.client.Close()
	}
	return nil
}

func sessionStateKey(key session.Key) string {
	return fmt.Sprintf("sess:{%s}:%s", key.AppName, key.UserID)
}

func eventKey(key session.Key) string {
	return fmt.Sprintf("event:{%s}:%s:%s", key.AppName, key.UserID, key.SessionID)
}

func (s *Service) storeSessionState(ctx context.Context, c redis.Cmdable, key session.Key, st *sessionState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("redis session: marshal session state: %w", err)
	}
	if err := c.HSet(ctx, sessionStateKey(key), key.SessionID, b).Err(); err != nil {
		return fmt.Errorf("redis session: store session %s: %w", key.SessionID, err)
	}
	return nil
}

func decodeSessionState(cmd *redis.StringCmd) (*sessionState, error) {
	b, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis session: get session state: %w", err)
	}
	st := &sessionState{}
	if err := json.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("redis session: unmarshal session state: %w", err)
	}
	return st, nil
}

func decodeEvents(cmd *redis.StringSliceCmd) ([]event.Event, error) {
	raw, err := cmd.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis session: get events: %w", err)
	}
	events := make([]event.Event, 0, len(raw))
	for _, v := range raw {
		var evt event.Event
		if err := json.Unmarshal([]byte(v), &evt); err != nil {
			return nil, fmt.Errorf("redis session: unmarshal event: %w", err)
		}
		events = append(events, evt)
	}
	return events, nil
}

func filterEvents(events []event.Event, opts session.Options) []event.Event {
	if opts.EventNum > 0 && len(events) > opts.EventNum {
		events = events[len(events)-opts.EventNum:]
	}
	if opts.EventTime.IsZero() {
		return events
	}
	filtered := make([]event.Event, 0, len(events))
	for _, e := range events {
		if !e.Timestamp.Before(opts.EventTime) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func newSession(key session.Key, st *sessionState, events []event.Event) *session.Session {
	return &session.Session{
		ID:        key.SessionID,
		AppName:   key.AppName,
		UserID:    key.UserID,
		State:     st.State,
		Events:    events,
		UpdatedAt: st.UpdatedAt,
		CreatedAt: st.CreatedAt,
	}
}
