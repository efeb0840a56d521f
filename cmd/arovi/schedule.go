// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-a2a/arovi/briefing"
	"github.com/go-a2a/arovi/internal/scheduler"
)

func (a *app) scheduleCmd() *cobra.Command {
	var (
		once        bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate the configured briefings on a schedule",
		Long: `Generates every briefing listed under schedule.requests each time
schedule.cron fires, writing one Markdown file per request to
schedule.output_dir. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if err := a.load(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()

			svc, closeSvc, err := a.sessionService(ctx)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, closeSvc()) }()

			r, err := a.newRunner(ctx, svc)
			if err != nil {
				return err
			}

			s, err := scheduler.New(scheduler.Config{
				Cron:        a.cfg.Schedule.Cron,
				Requests:    a.cfg.Schedule.Requests,
				OutputDir:   a.cfg.Schedule.OutputDir,
				Concurrency: concurrency,
				Logger:      a.logger,
				Generate: func(ctx context.Context, req briefing.Request) (*briefing.Result, error) {
					return briefing.Generate(ctx, r, "scheduler", req)
				},
			})
			if err != nil {
				return err
			}

			if once {
				outcomes, err := s.RunOnce(ctx)
				for _, o := range outcomes {
					if o.Err == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", o.Request.City, o.Path)
					}
				}
				return err
			}

			if err := s.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Next briefing run at %s\n", s.Next(time.Now()).Format(time.RFC1123))
			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
			defer cancel()
			return s.Stop(stopCtx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run every request once and exit")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "requests generated at once")

	return cmd
}
