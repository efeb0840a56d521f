// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/pkg/logging"
	"github.com/go-a2a/arovi/types"
)

// Option configures a [Runner].
type Option func(*Runner)

// WithRunConfig sets the [types.RunConfig] of every invocation.
func WithRunConfig(runConfig *types.RunConfig) Option {
	return func(r *Runner) {
		r.runConfig = runConfig
	}
}

// WithLogger sets the logger of the runner. It is also handed to agents and tools through the context.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner runs an agent against a session service.
//
// Every event the agent emits is appended to the session before the agent
// resumes, so that later stages observe the state committed by earlier ones.
type Runner struct {
	appName        string
	agent          types.Agent
	sessionService types.SessionService
	runConfig      *types.RunConfig
	logger         *slog.Logger
}

// New returns a new [Runner] for the agent.
func New(appName string, agent types.Agent, sessionService types.SessionService, opts ...Option) *Runner {
	r := &Runner{
		appName:        appName,
		agent:          agent,
		sessionService: sessionService,
		runConfig:      types.NewRunConfig(),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// AppName returns the application name of the runner.
func (r *Runner) AppName() string {
	return r.appName
}

// SessionService returns the session service of the runner.
func (r *Runner) SessionService() types.SessionService {
	return r.sessionService
}

// Run creates a new session for userID, runs the agent on message and
// returns the session as stored after the run.
func (r *Runner) Run(ctx context.Context, userID, message string) (types.Session, error) {
	ses, err := r.sessionService.CreateSession(ctx, r.appName, userID, "", nil)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	content := genai.NewContentFromText(message, genai.RoleUser)
	for _, err := range r.RunSession(ctx, ses, content) {
		if err != nil {
			return nil, err
		}
	}

	final, err := r.sessionService.GetSession(ctx, r.appName, userID, ses.ID(), nil)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", ses.ID(), err)
	}

	return final, nil
}

// RunSession runs the agent in ses on content, committing every event to the
// session service as it is produced.
func (r *Runner) RunSession(ctx context.Context, ses types.Session, content *genai.Content) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		ctx = logging.NewContext(ctx, r.logger)

		ictx := types.NewInvocationContext(r.agent, ses, r.sessionService,
			types.WithUserContent(content),
			types.WithRunConfig(r.runConfig),
		)
		r.logger.InfoContext(ctx, "starting invocation",
			slog.String("app_name", r.appName),
			slog.String("session_id", ses.ID()),
			slog.String("invocation_id", ictx.InvocationID),
			slog.String("agent", r.agent.Name()),
		)

		if content != nil {
			userEvent := types.NewEvent().
				WithInvocationID(ictx.InvocationID).
				WithAuthor("user").
				WithContent(content)
			if _, err := r.sessionService.AppendEvent(ctx, ses, userEvent); err != nil {
				yield(nil, fmt.Errorf("append user event: %w", err))
				return
			}
		}

		for event, err := range r.agent.Run(ctx, ictx) {
			if err != nil {
				r.logger.ErrorContext(ctx, "invocation failed",
					slog.String("invocation_id", ictx.InvocationID),
					slog.Any("error", err),
				)
				yield(nil, err)
				return
			}
			if _, err := r.sessionService.AppendEvent(ctx, ses, event); err != nil {
				yield(nil, fmt.Errorf("append event of %s: %w", event.Author, err))
				return
			}
			if !yield(event, nil) {
				return
			}
		}

		r.logger.InfoContext(ctx, "invocation finished",
			slog.String("invocation_id", ictx.InvocationID),
			slog.Int("llm_calls", ictx.LLMCalls()),
		)
	}
}
