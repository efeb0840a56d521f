// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	deepcopy "github.com/tiendc/go-deepcopy"

	"github.com/go-a2a/arovi/types"
)

// InMemoryService is an in-memory implementation of the [types.SessionService].
type InMemoryService struct {
	// sessions is a map from app name to a map from user ID to a map from session ID to session.
	sessions map[string]map[string]map[string]*Session

	// userState is a map from app name to a map from user ID to a map from key to value.
	userState map[string]map[string]map[string]any

	// appState is a map from app name to a map from key to value.
	appState map[string]map[string]any

	logger *slog.Logger
	mu     sync.RWMutex
}

var _ types.SessionService = (*InMemoryService)(nil)

// NewInMemoryService creates a new [InMemoryService].
func NewInMemoryService() *InMemoryService {
	return &InMemoryService{
		sessions:  make(map[string]map[string]map[string]*Session),
		userState: make(map[string]map[string]map[string]any),
		appState:  make(map[string]map[string]any),
		logger:    slog.Default(),
	}
}

// WithLogger sets the logger of the service.
func (s *InMemoryService) WithLogger(logger *slog.Logger) *InMemoryService {
	s.logger = logger
	return s
}

// CreateSession creates a new session.
func (s *InMemoryService) CreateSession(ctx context.Context, appName, userID, sessionID string, state map[string]any) (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.logger.InfoContext(ctx, "creating session",
		slog.String("app_name", appName),
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	if _, ok := s.sessions[appName][userID][sessionID]; ok {
		return nil, fmt.Errorf("session %s already exists for user %s in app %s", sessionID, userID, appName)
	}

	initial := make(map[string]any, len(state))
	if len(state) > 0 {
		if err := deepcopy.Copy(&initial, state); err != nil {
			return nil, fmt.Errorf("copy initial state: %w", err)
		}
	}
	appDelta, userDelta, sesState := splitDelta(initial)
	s.commitScoped(appName, userID, appDelta, userDelta)

	ses := NewSession(appName, userID, sessionID, sesState, time.Now())

	if _, ok := s.sessions[appName]; !ok {
		s.sessions[appName] = make(map[string]map[string]*Session)
	}
	if _, ok := s.sessions[appName][userID]; !ok {
		s.sessions[appName][userID] = make(map[string]*Session)
	}
	s.sessions[appName][userID][sessionID] = ses

	copied, err := s.copySession(ses, nil)
	if err != nil {
		return nil, err
	}
	return s.mergeState(appName, userID, copied), nil
}

// GetSession retrieves a session by ID.
func (s *InMemoryService) GetSession(ctx context.Context, appName, userID, sessionID string, config *types.GetSessionConfig) (types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.logger.DebugContext(ctx, "getting session",
		slog.String("app_name", appName),
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	ses, ok := s.sessions[appName][userID][sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s for user %s in app %s", types.ErrSessionNotFound, sessionID, userID, appName)
	}

	copied, err := s.copySession(ses, config)
	if err != nil {
		return nil, err
	}
	return s.mergeState(appName, userID, copied), nil
}

// ListSessions lists all sessions for a user, without events and state.
func (s *InMemoryService) ListSessions(ctx context.Context, appName, userID string) ([]types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.logger.DebugContext(ctx, "listing sessions",
		slog.String("app_name", appName),
		slog.String("user_id", userID),
	)

	sessions := make([]types.Session, 0, len(s.sessions[appName][userID]))
	for _, ses := range s.sessions[appName][userID] {
		sessions = append(sessions, NewSession(ses.AppName(), ses.UserID(), ses.ID(), nil, ses.LastUpdateTime()))
	}

	return sessions, nil
}

// DeleteSession deletes a session.
func (s *InMemoryService) DeleteSession(ctx context.Context, appName, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.InfoContext(ctx, "deleting session",
		slog.String("app_name", appName),
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	if _, ok := s.sessions[appName][userID][sessionID]; ok {
		delete(s.sessions[appName][userID], sessionID)
	}
	return nil
}

// AppendEvent appends an event to a session and commits its state delta.
//
// Partial events are returned as is without being recorded.
func (s *InMemoryService) AppendEvent(ctx context.Context, ses types.Session, event *types.Event) (*types.Event, error) {
	if event == nil || (event.LLMResponse != nil && event.Partial) {
		return event, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	appName, userID, sessionID := ses.AppName(), ses.UserID(), ses.ID()
	s.logger.DebugContext(ctx, "appending event to session",
		slog.String("app_name", appName),
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
		slog.String("author", event.Author),
	)

	delta := committedDelta(event)
	ses.State().Commit(delta)
	ses.AddEvent(event)
	ses.SetLastUpdateTime(event.Timestamp)

	stored, ok := s.sessions[appName][userID][sessionID]
	if !ok {
		return event, nil
	}

	appDelta, userDelta, sesDelta := splitDelta(delta)
	s.commitScoped(appName, userID, appDelta, userDelta)
	stored.State().Commit(sesDelta)
	stored.AddEvent(event)
	stored.SetLastUpdateTime(event.Timestamp)

	return event, nil
}

// commitScoped records the app and user scoped parts of a delta. s.mu must be held.
func (s *InMemoryService) commitScoped(appName, userID string, appDelta, userDelta map[string]any) {
	if len(appDelta) > 0 {
		if _, ok := s.appState[appName]; !ok {
			s.appState[appName] = make(map[string]any)
		}
		maps.Copy(s.appState[appName], appDelta)
	}
	if len(userDelta) > 0 {
		if _, ok := s.userState[appName]; !ok {
			s.userState[appName] = make(map[string]map[string]any)
		}
		if _, ok := s.userState[appName][userID]; !ok {
			s.userState[appName][userID] = make(map[string]any)
		}
		maps.Copy(s.userState[appName][userID], userDelta)
	}
}

// copySession creates a copy of a session that does not share state with the stored one.
func (s *InMemoryService) copySession(ses *Session, config *types.GetSessionConfig) (*Session, error) {
	var state map[string]any
	if err := deepcopy.Copy(&state, ses.State().ToMap()); err != nil {
		return nil, fmt.Errorf("copy session state: %w", err)
	}

	copied := NewSession(ses.AppName(), ses.UserID(), ses.ID(), state, ses.LastUpdateTime())
	copied.AddEvent(filterEvents(ses.Events(), config)...)

	return copied, nil
}

// mergeState merges app and user state into the session state.
func (s *InMemoryService) mergeState(appName, userID string, ses *Session) *Session {
	if appState, ok := s.appState[appName]; ok {
		ses.State().Commit(withPrefix(types.AppPrefix, appState))
	}
	if userState, ok := s.userState[appName][userID]; ok {
		ses.State().Commit(withPrefix(types.UserPrefix, userState))
	}
	return ses
}
