// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package scheduler generates the configured briefings on a cron schedule and
// writes each one to a Markdown file.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/go-a2a/arovi/briefing"
)

// GenerateFunc produces the briefing of one request.
type GenerateFunc func(ctx context.Context, req briefing.Request) (*briefing.Result, error)

// Config configures a [Scheduler].
type Config struct {
	// Cron is a standard five field spec or a descriptor such as @daily.
	Cron      string
	Requests  []briefing.Request
	OutputDir string
	Generate  GenerateFunc

	// Concurrency bounds the requests generated at once. Defaults to 1.
	Concurrency int

	Logger *slog.Logger
	// Now dates the files of requests without a date. Defaults to time.Now.
	Now func() time.Time
}

// Outcome is the result of one request of a scheduled run.
type Outcome struct {
	Request briefing.Request
	Path    string
	Err     error
}

// Scheduler runs the configured requests on every tick of its schedule.
type Scheduler struct {
	cfg      Config
	schedule cron.Schedule
	logger   *slog.Logger

	mu         sync.Mutex
	cronEngine *cron.Cron
}

// New validates cfg and returns a stopped [Scheduler].
func New(cfg Config) (*Scheduler, error) {
	if cfg.Generate == nil {
		return nil, errors.New("scheduler: generate func is required")
	}
	if len(cfg.Requests) == 0 {
		return nil, errors.New("scheduler: at least one request is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("scheduler: output dir is required")
	}
	schedule, err := cron.ParseStandard(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("scheduler: parse cron %q: %w", cfg.Cron, err)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cfg:      cfg,
		schedule: schedule,
		logger:   logger,
	}, nil
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Start begins running the requests on schedule. Runs use ctx, and a run
// still in progress when the next tick fires makes that tick a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cronEngine != nil {
		return errors.New("scheduler: already started")
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug))
	s.cronEngine = cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))
	s.cronEngine.Schedule(s.schedule, cron.FuncJob(func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled run failed", slog.Any("error", err))
		}
	}))
	s.cronEngine.Start()

	s.logger.InfoContext(ctx, "scheduler started",
		slog.String("cron", s.cfg.Cron),
		slog.Int("requests", len(s.cfg.Requests)),
		slog.Time("next", s.Next(s.cfg.Now())),
	)

	return nil
}

// Stop stops the schedule and waits for a running run to finish or ctx to be done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	engine := s.cronEngine
	s.cronEngine = nil
	s.mu.Unlock()

	if engine == nil {
		return nil
	}

	select {
	case <-engine.Stop().Done():
		s.logger.InfoContext(ctx, "scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: stop: %w", ctx.Err())
	}
}

// RunOnce generates every configured briefing and writes it to the output directory.
//
// A failing request does not stop the others; the returned error joins every failure.
func (s *Scheduler) RunOnce(ctx context.Context) ([]Outcome, error) {
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("scheduler: create output dir: %w", err)
	}

	outcomes := make([]Outcome, len(s.cfg.Requests))
	var eg errgroup.Group
	eg.SetLimit(s.cfg.Concurrency)
	for i, req := range s.cfg.Requests {
		eg.Go(func() error {
			path, err := s.runRequest(ctx, req)
			outcomes[i] = Outcome{Request: req, Path: path, Err: err}
			return nil
		})
	}
	_ = eg.Wait()

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Request.City, o.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}

func (s *Scheduler) runRequest(ctx context.Context, req briefing.Request) (string, error) {
	started := s.cfg.Now()
	res, err := s.cfg.Generate(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "briefing generation failed",
			slog.String("city", req.City),
			slog.Any("error", err),
		)
		return "", err
	}

	date := req.Date
	if date == "" {
		date = started.Format(time.DateOnly)
	}
	path := filepath.Join(s.cfg.OutputDir, FileName(req, date))

	var sb strings.Builder
	sb.WriteString(res.Briefing)
	sb.WriteString("\n")
	if res.HasMetrics {
		sb.WriteString("\n")
		sb.WriteString(briefing.FormatMetrics(res.Metrics))
		sb.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("write briefing: %w", err)
	}

	s.logger.InfoContext(ctx, "briefing written",
		slog.String("city", req.City),
		slog.String("path", path),
		slog.String("session_id", res.SessionID),
		slog.Bool("has_briefing", res.HasBriefing),
	)
	return path, nil
}

// FileName returns the Markdown file name of req on date, e.g. 2025-11-02-austin-texas.md.
func FileName(req briefing.Request, date string) string {
	parts := []string{date, req.City}
	if req.State != "" {
		parts = append(parts, req.State)
	}
	return slug(strings.Join(parts, " ")) + ".md"
}

func slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
