// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-a2a/arovi/briefing"
	"github.com/go-a2a/arovi/internal/config"
	"github.com/go-a2a/arovi/model"
	"github.com/go-a2a/arovi/pkg/logging"
	"github.com/go-a2a/arovi/runner"
	"github.com/go-a2a/arovi/session"
	"github.com/go-a2a/arovi/types"
)

// modelFactory resolves the configured model.
type modelFactory func(ctx context.Context, apiKey, modelName string) (types.Model, error)

// app carries the state shared by the commands of one process.
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      *config.Config
	logger   *slog.Logger
	newModel modelFactory
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:        config.New(),
		newModel: model.NewLLM,
	}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arovi",
		Short: "Calm daily public-health briefings",
		Long: `Arovi generates a calm, non-alarmist daily public-health briefing for a
city by searching regional news, classifying it, summarizing trends, drafting
a briefing and reviewing it for political, speculative or sensational content.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./arovi.yaml or $HOME/.arovi/arovi.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("model", briefing.DefaultModelName, "model name, e.g. gemini-2.5-flash or claude-sonnet-4-5")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("model", flags.Lookup("model"))

	cmd.AddCommand(a.briefCmd(), a.scheduleCmd(), versionCmd())

	return cmd
}

// load reads the configuration and builds the logger. Commands needing
// either call it first.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	cmd.SetContext(logging.NewContext(cmd.Context(), a.logger))

	return nil
}

// sessionService opens the configured session backend. The returned func
// releases it.
func (a *app) sessionService(ctx context.Context) (types.SessionService, func() error, error) {
	switch a.cfg.Session.Backend {
	case config.BackendSQLite:
		svc, err := session.NewSQLiteService(ctx, a.cfg.Session.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open session store %s: %w", a.cfg.Session.SQLitePath, err)
		}
		return svc.WithLogger(a.logger), svc.Close, nil
	default:
		return session.NewInMemoryService().WithLogger(a.logger), func() error { return nil }, nil
	}
}

// newRunner assembles the root agent and its runner over svc.
func (a *app) newRunner(ctx context.Context, svc types.SessionService) (*runner.Runner, error) {
	m, err := a.newModel(ctx, a.cfg.APIKey(), a.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("create model %s: %w", a.cfg.Model, err)
	}
	if l, ok := m.(interface{ SetLogger(*slog.Logger) }); ok {
		l.SetLogger(a.logger)
	}

	opts := a.cfg.PipelineOptions()
	opts.Model = m
	opts.Logger = a.logger
	root, err := briefing.NewRootAgent(ctx, opts)
	if err != nil {
		return nil, err
	}

	return runner.New(a.cfg.AppName, root, svc,
		runner.WithRunConfig(a.cfg.RunConfig()),
		runner.WithLogger(a.logger),
	), nil
}
