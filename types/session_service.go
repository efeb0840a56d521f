// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"time"
)

// GetSessionConfig is the configuration of getting a session.
type GetSessionConfig struct {
	NumRecentEvents int
	AfterTimestamp  time.Time
}

// SessionService is an interface for managing sessions and their events.
type SessionService interface {
	// CreateSession creates a new session with the given parameters.
	//
	// An empty sessionID generates a new one.
	CreateSession(ctx context.Context, appName, userID, sessionID string, state map[string]any) (Session, error)

	// GetSession retrieves a specific session.
	//
	// It returns an error wrapping [ErrSessionNotFound] if the session does not exist.
	GetSession(ctx context.Context, appName, userID, sessionID string, config *GetSessionConfig) (Session, error)

	// ListSessions lists all sessions for a user/app, without events and state.
	ListSessions(ctx context.Context, appName, userID string) ([]Session, error)

	// DeleteSession removes a specific session.
	DeleteSession(ctx context.Context, appName, userID, sessionID string) error

	// AppendEvent adds an event to a session and commits its state delta.
	AppendEvent(ctx context.Context, ses Session, event *Event) (*Event, error)
}
