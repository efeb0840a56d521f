// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"slices"
	"sync"
	"time"

	"github.com/go-a2a/arovi/types"
)

// Session is a user session holding the events and the state of one pipeline run.
type Session struct {
	id      string
	appName string
	userID  string
	state   *types.State

	mu             sync.RWMutex
	events         []*types.Event
	lastUpdateTime time.Time
}

var _ types.Session = (*Session)(nil)

// NewSession creates a new session with the given parameters.
func NewSession(appName, userID, id string, state map[string]any, lastUpdateTime time.Time) *Session {
	return &Session{
		id:             id,
		appName:        appName,
		userID:         userID,
		state:          types.NewState(state, nil),
		lastUpdateTime: lastUpdateTime,
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// AppName returns the application name.
func (s *Session) AppName() string {
	return s.appName
}

// UserID returns the user ID.
func (s *Session) UserID() string {
	return s.userID
}

// State returns the state of this session.
func (s *Session) State() *types.State {
	return s.state
}

// Events returns a copy of the events in this session.
func (s *Session) Events() []*types.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.events)
}

// LastUpdateTime returns the last time this session was updated.
func (s *Session) LastUpdateTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastUpdateTime
}

// SetLastUpdateTime sets the last update time of this session.
func (s *Session) SetLastUpdateTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUpdateTime = t
}

// AddEvent adds an event to this session.
func (s *Session) AddEvent(events ...*types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, events...)
}

// filterEvents applies config to events.
func filterEvents(events []*types.Event, config *types.GetSessionConfig) []*types.Event {
	if config == nil {
		return events
	}
	if !config.AfterTimestamp.IsZero() {
		events = slices.DeleteFunc(slices.Clone(events), func(e *types.Event) bool {
			return e.Timestamp.Before(config.AfterTimestamp)
		})
	}
	if config.NumRecentEvents > 0 && config.NumRecentEvents < len(events) {
		events = events[len(events)-config.NumRecentEvents:]
	}
	return events
}
