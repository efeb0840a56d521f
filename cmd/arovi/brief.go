// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-a2a/arovi/briefing"
)

func (a *app) briefCmd() *cobra.Command {
	var (
		req    briefing.Request
		userID string
		output string
	)

	cmd := &cobra.Command{
		Use:   "brief [request]",
		Short: "Generate one briefing",
		Long: `Generates one briefing, either for the location given by --city and the
other request flags or for a free-form request such as
"daily briefing for Chicago, Illinois".`,
		Example: `  arovi brief --city Austin --state Texas
  arovi brief --city Lyon --country France --date 2025-11-02 --output lyon.md
  arovi brief "public-health briefing for Chicago, Illinois for tomorrow"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			switch {
			case len(args) == 1 && req.City != "":
				return errors.New("give either a request or --city, not both")
			case len(args) == 0 && req.City == "":
				return errors.New("a request or --city is required")
			}
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
			var res *briefing.Result
			if len(args) == 1 {
				res, err = briefing.GenerateText(ctx, r, userID, args[0])
			} else {
				res, err = briefing.Generate(ctx, r, userID, req)
			}
			if err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "briefing generated",
				slog.String("session_id", res.SessionID),
				slog.Bool("has_briefing", res.HasBriefing),
			)

			out := cmd.OutOrStdout()
			if output != "" {
				if err := os.WriteFile(output, []byte(res.Briefing+"\n"), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(out, "Briefing written to %s\n", output)
			} else {
				fmt.Fprintln(out, res.Briefing)
			}
			if res.HasMetrics {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderMetrics(res.Metrics))
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.City, "city", "", "city the briefing is for")
	flags.StringVar(&req.State, "state", "", "state or region")
	flags.StringVar(&req.Country, "country", "", "country (default United States)")
	flags.StringVar(&req.Date, "date", "", "target date (default today)")
	flags.StringVar(&userID, "user", "local", "user id owning the session")
	flags.StringVarP(&output, "output", "o", "", "write the briefing to this file instead of stdout")

	return cmd
}
