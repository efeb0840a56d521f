// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package session provides the [types.SessionService] implementations that
// hold the shared state of a briefing run.
//
// Sessions are organized hierarchically:
//
//	{appName} -> {userID} -> {sessionID} -> Session
//
// # State scopes
//
// A state delta is committed when its event is appended. Keys are routed by prefix:
//
//   - "app:" keys are shared by every user of an application
//   - "user:" keys are shared by every session of a user
//   - "temp:" keys are never committed; they live only inside the event
//   - every other key belongs to the session
//
// # Implementations
//
// [InMemoryService] keeps everything in process and is what the briefing
// pipeline uses by default. [SQLiteService] persists sessions, events and the
// app and user scopes in a SQLite database so that past briefings can be
// inspected after the process exits.
//
//	svc := session.NewInMemoryService()
//	ses, err := svc.CreateSession(ctx, "arovi", "user", "", nil)
//	if err != nil {
//		return err
//	}
//	event := types.NewEvent().WithAuthor("ingest")
//	event.Actions.StateDelta["news_raw"] = "..."
//	if _, err := svc.AppendEvent(ctx, ses, event); err != nil {
//		return err
//	}
//
// A missing session is reported with an error wrapping [types.ErrSessionNotFound].
package session
