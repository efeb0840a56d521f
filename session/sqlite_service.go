// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/go-a2a/arovi/types"
)

// SQLiteDriverName is the database/sql driver name used by [SQLiteService].
const SQLiteDriverName = "sqlite"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		app_name    TEXT NOT NULL,
		user_id     TEXT NOT NULL,
		id          TEXT NOT NULL,
		state       TEXT NOT NULL DEFAULT '{}',
		create_time INTEGER NOT NULL,
		update_time INTEGER NOT NULL,
		PRIMARY KEY (app_name, user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id            TEXT NOT NULL,
		app_name      TEXT NOT NULL,
		user_id       TEXT NOT NULL,
		session_id    TEXT NOT NULL,
		invocation_id TEXT NOT NULL,
		author        TEXT NOT NULL,
		branch        TEXT NOT NULL DEFAULT '',
		timestamp     INTEGER NOT NULL,
		content       TEXT,
		actions       TEXT,
		error_code    TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (id, app_name, user_id, session_id)
	)`,
	`CREATE TABLE IF NOT EXISTS app_states (
		app_name    TEXT NOT NULL PRIMARY KEY,
		state       TEXT NOT NULL DEFAULT '{}',
		update_time INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_states (
		app_name    TEXT NOT NULL,
		user_id     TEXT NOT NULL,
		state       TEXT NOT NULL DEFAULT '{}',
		update_time INTEGER NOT NULL,
		PRIMARY KEY (app_name, user_id)
	)`,
}

// SQLiteService is a [types.SessionService] persisting sessions in a SQLite database.
//
// Values survive a round trip as their JSON form: typed values written by a
// stage come back as generic maps, slices, strings, float64 and bool.
type SQLiteService struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ types.SessionService = (*SQLiteService)(nil)

// NewSQLiteService opens the database at dsn and creates the tables if needed.
//
// Use ":memory:" for a throwaway database.
func NewSQLiteService(ctx context.Context, dsn string) (*SQLiteService, error) {
	db, err := sql.Open(SQLiteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// a ":memory:" database lives as long as its connection
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLiteService{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// WithLogger sets the logger of the service.
func (s *SQLiteService) WithLogger(logger *slog.Logger) *SQLiteService {
	s.logger = logger
	return s
}

// Close closes the underlying database.
func (s *SQLiteService) Close() error {
	return s.db.Close()
}

// CreateSession implements [types.SessionService].
func (s *SQLiteService) CreateSession(ctx context.Context, appName, userID, sessionID string, state map[string]any) (types.Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.logger.InfoContext(ctx, "creating session",
		slog.String("app_name", appName),
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	now := time.Now()
	appDelta, userDelta, sesState := splitDelta(state)
	encoded, err := encodeState(sesState)
	if err != nil {
		return nil, err
	}

	var appState, userState map[string]any
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := sq.Insert("sessions").
			Columns("app_name", "user_id", "id", "state", "create_time", "update_time").
			Values(appName, userID, sessionID, encoded, now.UnixNano(), now.UnixNano()).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert session %s: %w", sessionID, err)
		}

		if appState, err = s.upsertAppState(ctx, tx, appName, appDelta, now); err != nil {
			return err
		}
		userState, err = s.upsertUserState(ctx, tx, appName, userID, userDelta, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	ses := NewSession(appName, userID, sessionID, sesState, now)
	ses.State().Commit(withPrefix(types.AppPrefix, appState))
	ses.State().Commit(withPrefix(types.UserPrefix, userState))

	return ses, nil
}

// GetSession implements [types.SessionService].
func (s *SQLiteService) GetSession(ctx context.Context, appName, userID, sessionID string, config *types.GetSessionConfig) (types.Session, error) {
	s.logger.DebugContext(ctx, "getting session",
		slog.String("app_name", appName),
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	query, args, err := sq.Select("state", "update_time").
		From("sessions").
		Where(sq.Eq{"app_name": appName, "user_id": userID, "id": sessionID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var (
		rawState   string
		updateTime int64
	)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&rawState, &updateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s for user %s in app %s", types.ErrSessionNotFound, sessionID, userID, appName)
		}
		return nil, fmt.Errorf("select session %s: %w", sessionID, err)
	}

	state, err := decodeState(rawState)
	if err != nil {
		return nil, err
	}
	ses := NewSession(appName, userID, sessionID, state, time.Unix(0, updateTime))

	events, err := s.loadEvents(ctx, appName, userID, sessionID, config)
	if err != nil {
		return nil, err
	}
	ses.AddEvent(events...)

	appState, err := s.loadScopedState(ctx, "app_states", sq.Eq{"app_name": appName})
	if err != nil {
		return nil, err
	}
	userState, err := s.loadScopedState(ctx, "user_states", sq.Eq{"app_name": appName, "user_id": userID})
	if err != nil {
		return nil, err
	}
	ses.State().Commit(withPrefix(types.AppPrefix, appState))
	ses.State().Commit(withPrefix(types.UserPrefix, userState))

	return ses, nil
}

// ListSessions implements [types.SessionService].
func (s *SQLiteService) ListSessions(ctx context.Context, appName, userID string) ([]types.Session, error) {
	query, args, err := sq.Select("id", "update_time").
		From("sessions").
		Where(sq.Eq{"app_name": appName, "user_id": userID}).
		OrderBy("update_time").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []types.Session
	for rows.Next() {
		var (
			id         string
			updateTime int64
		)
		if err := rows.Scan(&id, &updateTime); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, NewSession(appName, userID, id, nil, time.Unix(0, updateTime)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return sessions, nil
}

// DeleteSession implements [types.SessionService].
func (s *SQLiteService) DeleteSession(ctx context.Context, appName, userID, sessionID string) error {
	s.logger.InfoContext(ctx, "deleting session",
		slog.String("app_name", appName),
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := sq.Delete("events").
			Where(sq.Eq{"app_name": appName, "user_id": userID, "session_id": sessionID}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}

		query, args, err = sq.Delete("sessions").
			Where(sq.Eq{"app_name": appName, "user_id": userID, "id": sessionID}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// AppendEvent implements [types.SessionService].
func (s *SQLiteService) AppendEvent(ctx context.Context, ses types.Session, event *types.Event) (*types.Event, error) {
	if event == nil || (event.LLMResponse != nil && event.Partial) {
		return event, nil
	}

	appName, userID, sessionID := ses.AppName(), ses.UserID(), ses.ID()
	delta := committedDelta(event)
	appDelta, userDelta, sesDelta := splitDelta(delta)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.insertEvent(ctx, tx, ses, event); err != nil {
			return err
		}

		query, args, err := sq.Select("state").
			From("sessions").
			Where(sq.Eq{"app_name": appName, "user_id": userID, "id": sessionID}).
			ToSql()
		if err != nil {
			return err
		}
		var rawState string
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&rawState); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s for user %s in app %s", types.ErrSessionNotFound, sessionID, userID, appName)
			}
			return fmt.Errorf("select session state: %w", err)
		}
		stored, err := decodeState(rawState)
		if err != nil {
			return err
		}
		maps.Copy(stored, sesDelta)
		encoded, err := encodeState(stored)
		if err != nil {
			return err
		}

		query, args, err = sq.Update("sessions").
			Set("state", encoded).
			Set("update_time", event.Timestamp.UnixNano()).
			Where(sq.Eq{"app_name": appName, "user_id": userID, "id": sessionID}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update session state: %w", err)
		}

		if _, err := s.upsertAppState(ctx, tx, appName, appDelta, event.Timestamp); err != nil {
			return err
		}
		_, err = s.upsertUserState(ctx, tx, appName, userID, userDelta, event.Timestamp)
		return err
	})
	if err != nil {
		return nil, err
	}

	ses.State().Commit(delta)
	ses.AddEvent(event)
	ses.SetLastUpdateTime(event.Timestamp)

	return event, nil
}

func (s *SQLiteService) insertEvent(ctx context.Context, tx *sql.Tx, ses types.Session, event *types.Event) error {
	var (
		content   any
		errorCode string
		errorMsg  string
	)
	if event.LLMResponse != nil {
		errorCode, errorMsg = event.ErrorCode, event.ErrorMessage
		if event.Content != nil {
			encoded, err := types.EncodeContent(event.Content)
			if err != nil {
				return fmt.Errorf("encode event content: %w", err)
			}
			b, err := sonic.ConfigStd.MarshalToString(encoded)
			if err != nil {
				return fmt.Errorf("marshal event content: %w", err)
			}
			content = b
		}
	}

	var actions any
	if event.Actions != nil {
		stored := *event.Actions
		stored.StateDelta = committedDelta(event)
		b, err := sonic.ConfigStd.MarshalToString(stored)
		if err != nil {
			return fmt.Errorf("marshal event actions: %w", err)
		}
		actions = b
	}

	query, args, err := sq.Insert("events").
		Columns("id", "app_name", "user_id", "session_id", "invocation_id", "author", "branch",
			"timestamp", "content", "actions", "error_code", "error_message").
		Values(event.ID, ses.AppName(), ses.UserID(), ses.ID(), event.InvocationID, event.Author, event.Branch,
			event.Timestamp.UnixNano(), content, actions, errorCode, errorMsg).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert event %s: %w", event.ID, err)
	}
	return nil
}

func (s *SQLiteService) loadEvents(ctx context.Context, appName, userID, sessionID string, config *types.GetSessionConfig) ([]*types.Event, error) {
	builder := sq.Select("id", "invocation_id", "author", "branch", "timestamp", "content", "actions", "error_code", "error_message").
		From("events").
		Where(sq.Eq{"app_name": appName, "user_id": userID, "session_id": sessionID}).
		OrderBy("timestamp")
	if config != nil && !config.AfterTimestamp.IsZero() {
		builder = builder.Where(sq.GtOrEq{"timestamp": config.AfterTimestamp.UnixNano()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}
	defer rows.Close()

	var events []*types.Event
	for rows.Next() {
		var (
			event     types.Event
			timestamp int64
			content   sql.NullString
			actions   sql.NullString
			errorCode string
			errorMsg  string
		)
		if err := rows.Scan(&event.ID, &event.InvocationID, &event.Author, &event.Branch, &timestamp, &content, &actions, &errorCode, &errorMsg); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.Timestamp = time.Unix(0, timestamp)

		if content.Valid || errorCode != "" {
			event.LLMResponse = &types.LLMResponse{
				ErrorCode:    errorCode,
				ErrorMessage: errorMsg,
			}
		}
		if content.Valid {
			var raw map[string]any
			if err := sonic.ConfigStd.UnmarshalFromString(content.String, &raw); err != nil {
				return nil, fmt.Errorf("unmarshal event content: %w", err)
			}
			if event.Content, err = types.DecodeContent(raw); err != nil {
				return nil, fmt.Errorf("decode event content: %w", err)
			}
		}

		event.Actions = types.NewEventActions()
		if actions.Valid {
			if err := sonic.ConfigStd.UnmarshalFromString(actions.String, event.Actions); err != nil {
				return nil, fmt.Errorf("unmarshal event actions: %w", err)
			}
		}

		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return filterEvents(events, &types.GetSessionConfig{NumRecentEvents: numRecent(config)}), nil
}

func (s *SQLiteService) loadScopedState(ctx context.Context, table string, where sq.Eq) (map[string]any, error) {
	query, args, err := sq.Select("state").From(table).Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	var rawState string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&rawState); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return decodeState(rawState)
}

// upsertAppState merges delta into the stored app state and returns the result.
func (s *SQLiteService) upsertAppState(ctx context.Context, tx *sql.Tx, appName string, delta map[string]any, t time.Time) (map[string]any, error) {
	return s.upsertScopedState(ctx, tx, "app_states", []string{"app_name"}, []any{appName}, delta, t)
}

// upsertUserState merges delta into the stored user state and returns the result.
func (s *SQLiteService) upsertUserState(ctx context.Context, tx *sql.Tx, appName, userID string, delta map[string]any, t time.Time) (map[string]any, error) {
	return s.upsertScopedState(ctx, tx, "user_states", []string{"app_name", "user_id"}, []any{appName, userID}, delta, t)
}

func (s *SQLiteService) upsertScopedState(ctx context.Context, tx *sql.Tx, table string, keyCols []string, keyVals []any, delta map[string]any, t time.Time) (map[string]any, error) {
	where := sq.Eq{}
	for i, col := range keyCols {
		where[col] = keyVals[i]
	}

	query, args, err := sq.Select("state").From(table).Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	state := map[string]any{}
	var rawState string
	switch err := tx.QueryRowContext(ctx, query, args...).Scan(&rawState); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("select %s: %w", table, err)
	default:
		if state, err = decodeState(rawState); err != nil {
			return nil, err
		}
	}
	if len(delta) == 0 {
		return state, nil
	}

	maps.Copy(state, delta)
	encoded, err := encodeState(state)
	if err != nil {
		return nil, err
	}

	cols := append(append([]string{}, keyCols...), "state", "update_time")
	vals := append(append([]any{}, keyVals...), encoded, t.UnixNano())
	query, args, err = sq.Insert(table).
		Columns(cols...).
		Values(vals...).
		Suffix(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET state = excluded.state, update_time = excluded.update_time", strings.Join(keyCols, ", "))).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("upsert %s: %w", table, err)
	}

	return state, nil
}

func (s *SQLiteService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func encodeState(state map[string]any) (string, error) {
	if state == nil {
		state = map[string]any{}
	}
	b, err := sonic.ConfigStd.MarshalToString(state)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return b, nil
}

func decodeState(raw string) (map[string]any, error) {
	state := map[string]any{}
	if raw == "" {
		return state, nil
	}
	if err := sonic.ConfigStd.UnmarshalFromString(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return state, nil
}

func numRecent(config *types.GetSessionConfig) int {
	if config == nil {
		return 0
	}
	return config.NumRecentEvents
}
