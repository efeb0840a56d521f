// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/go-a2a/arovi/session"
	"github.com/go-a2a/arovi/types"
)

func services(t *testing.T) map[string]types.SessionService {
	t.Helper()

	sqlite, err := session.NewSQLiteService(t.Context(), filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLiteService: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]types.SessionService{
		"in-memory": session.NewInMemoryService(),
		"sqlite":    sqlite,
	}
}

func TestSessionService_CreateAndGet(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			created, err := svc.CreateSession(ctx, "arovi", "u1", "s1", map[string]any{
				"city":      "Austin",
				"app:limit": "3",
				"user:tone": "neutral",
				"temp:seed": "x",
			})
			if err != nil {
				t.Fatalf("CreateSession: %v", err)
			}
			want := map[string]any{
				"city":      "Austin",
				"app:limit": "3",
				"user:tone": "neutral",
			}
			if diff := cmp.Diff(want, created.State().ToMap()); diff != "" {
				t.Errorf("created state mismatch (-want +got):\n%s", diff)
			}

			got, err := svc.GetSession(ctx, "arovi", "u1", "s1", nil)
			if err != nil {
				t.Fatalf("GetSession: %v", err)
			}
			if diff := cmp.Diff(want, got.State().ToMap()); diff != "" {
				t.Errorf("stored state mismatch (-want +got):\n%s", diff)
			}
			if got.ID() != "s1" || got.AppName() != "arovi" || got.UserID() != "u1" {
				t.Errorf("GetSession returned %s/%s/%s", got.AppName(), got.UserID(), got.ID())
			}
		})
	}
}

func TestSessionService_GeneratesID(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ses, err := svc.CreateSession(t.Context(), "arovi", "u1", "", nil)
			if err != nil {
				t.Fatalf("CreateSession: %v", err)
			}
			if ses.ID() == "" {
				t.Fatal("expected a generated session ID")
			}
		})
	}
}

func TestSessionService_NotFound(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			_, err := svc.GetSession(t.Context(), "arovi", "nobody", "missing", nil)
			if !errors.Is(err, types.ErrSessionNotFound) {
				t.Fatalf("GetSession error = %v, want ErrSessionNotFound", err)
			}
		})
	}
}

func TestSessionService_AppendEvent(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			ses, err := svc.CreateSession(ctx, "arovi", "u1", "s1", nil)
			if err != nil {
				t.Fatalf("CreateSession: %v", err)
			}

			event := types.NewEvent().
				WithAuthor("ingest").
				WithInvocationID("inv").
				WithContent(genai.NewContentFromText("done", genai.RoleModel))
			event.Actions.StateDelta = map[string]any{
				"news_raw":     "a headline",
				"app:runs":     "1",
				"user:city":    "Austin",
				"temp:scratch": "gone",
			}
			if _, err := svc.AppendEvent(ctx, ses, event); err != nil {
				t.Fatalf("AppendEvent: %v", err)
			}

			partial := types.NewEvent().WithAuthor("ingest").WithLLMResponse(&types.LLMResponse{Partial: true})
			partial.Actions.StateDelta["news_raw"] = "half"
			if _, err := svc.AppendEvent(ctx, ses, partial); err != nil {
				t.Fatalf("AppendEvent(partial): %v", err)
			}

			want := map[string]any{
				"news_raw":  "a headline",
				"app:runs":  "1",
				"user:city": "Austin",
			}
			if diff := cmp.Diff(want, ses.State().ToMap()); diff != "" {
				t.Errorf("in-flight state mismatch (-want +got):\n%s", diff)
			}

			got, err := svc.GetSession(ctx, "arovi", "u1", "s1", nil)
			if err != nil {
				t.Fatalf("GetSession: %v", err)
			}
			if diff := cmp.Diff(want, got.State().ToMap()); diff != "" {
				t.Errorf("stored state mismatch (-want +got):\n%s", diff)
			}
			events := got.Events()
			if len(events) != 1 {
				t.Fatalf("stored %d events, want 1", len(events))
			}
			if events[0].Author != "ingest" || events[0].Text() != "done" {
				t.Errorf("stored event = %s %q", events[0].Author, events[0].Text())
			}

			// app and user scopes are visible from another session of the same user
			other, err := svc.CreateSession(ctx, "arovi", "u1", "s2", nil)
			if err != nil {
				t.Fatalf("CreateSession: %v", err)
			}
			wantOther := map[string]any{"app:runs": "1", "user:city": "Austin"}
			if diff := cmp.Diff(wantOther, other.State().ToMap()); diff != "" {
				t.Errorf("shared scopes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSessionService_GetSessionConfig(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			ses, err := svc.CreateSession(ctx, "arovi", "u1", "s1", nil)
			if err != nil {
				t.Fatalf("CreateSession: %v", err)
			}
			base := time.Now()
			for i, author := range []string{"a", "b", "c"} {
				event := types.NewEvent().WithAuthor(author)
				event.Timestamp = base.Add(time.Duration(i) * time.Second)
				if _, err := svc.AppendEvent(ctx, ses, event); err != nil {
					t.Fatalf("AppendEvent: %v", err)
				}
			}

			tests := map[string]struct {
				config *types.GetSessionConfig
				want   []string
			}{
				"all": {
					config: nil,
					want:   []string{"a", "b", "c"},
				},
				"recent": {
					config: &types.GetSessionConfig{NumRecentEvents: 2},
					want:   []string{"b", "c"},
				},
				"after": {
					config: &types.GetSessionConfig{AfterTimestamp: base.Add(time.Second)},
					want:   []string{"b", "c"},
				},
				"after and recent": {
					config: &types.GetSessionConfig{AfterTimestamp: base.Add(time.Second), NumRecentEvents: 1},
					want:   []string{"c"},
				},
			}
			for name, tt := range tests {
				t.Run(name, func(t *testing.T) {
					got, err := svc.GetSession(ctx, "arovi", "u1", "s1", tt.config)
					if err != nil {
						t.Fatalf("GetSession: %v", err)
					}
					var authors []string
					for _, event := range got.Events() {
						authors = append(authors, event.Author)
					}
					if diff := cmp.Diff(tt.want, authors); diff != "" {
						t.Errorf("events mismatch (-want +got):\n%s", diff)
					}
				})
			}
		})
	}
}

func TestSessionService_ListAndDelete(t *testing.T) {
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			for _, id := range []string{"s1", "s2"} {
				if _, err := svc.CreateSession(ctx, "arovi", "u1", id, map[string]any{"k": "v"}); err != nil {
					t.Fatalf("CreateSession(%s): %v", id, err)
				}
			}

			sessions, err := svc.ListSessions(ctx, "arovi", "u1")
			if err != nil {
				t.Fatalf("ListSessions: %v", err)
			}
			if len(sessions) != 2 {
				t.Fatalf("ListSessions returned %d sessions, want 2", len(sessions))
			}
			for _, ses := range sessions {
				if len(ses.State().ToMap()) != 0 || len(ses.Events()) != 0 {
					t.Errorf("listed session %s carries state or events", ses.ID())
				}
			}

			if err := svc.DeleteSession(ctx, "arovi", "u1", "s1"); err != nil {
				t.Fatalf("DeleteSession: %v", err)
			}
			if _, err := svc.GetSession(ctx, "arovi", "u1", "s1", nil); !errors.Is(err, types.ErrSessionNotFound) {
				t.Errorf("GetSession after delete error = %v, want ErrSessionNotFound", err)
			}
			if _, err := svc.GetSession(ctx, "arovi", "u1", "s2", nil); err != nil {
				t.Errorf("GetSession(s2): %v", err)
			}
		})
	}
}

func TestInMemoryService_SessionCopiesAreIsolated(t *testing.T) {
	ctx := t.Context()
	svc := session.NewInMemoryService()

	ses, err := svc.CreateSession(ctx, "arovi", "u1", "s1", map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	ses.State().Commit(map[string]any{"k": "changed"})

	got, err := svc.GetSession(ctx, "arovi", "u1", "s1", nil)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if v, _ := got.State().Get("k"); v != "v" {
		t.Errorf("stored state leaked a local change: k = %v", v)
	}
}
