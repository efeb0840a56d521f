// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package briefing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-a2a/arovi/runner"
	"github.com/go-a2a/arovi/types"
)

// DefaultCountry is assumed when a [Request] names no country.
const DefaultCountry = "United States"

// DefaultDate is assumed when a request names no date.
const DefaultDate = "today"

// NoBriefingMessage is returned by [FinalBriefing] when a run produced no briefing.
const NoBriefingMessage = "No briefing was produced for this request."

// Request identifies the briefing to generate.
type Request struct {
	City    string `json:"city" mapstructure:"city"`
	State   string `json:"state,omitempty" mapstructure:"state"`
	Country string `json:"country,omitempty" mapstructure:"country"`
	// Date is free text, e.g. "2025-11-02". Empty means today.
	Date string `json:"date,omitempty" mapstructure:"date"`
}

// Validate reports whether r can be turned into a prompt.
func (r Request) Validate() error {
	if strings.TrimSpace(r.City) == "" {
		return errors.New("briefing request: city is required")
	}
	return nil
}

// Prompt returns the user message asking the root agent for the briefing.
func (r Request) Prompt() string {
	var sb strings.Builder
	sb.WriteString("Generate a calm, public-health daily briefing for ")
	sb.WriteString(strings.TrimSpace(r.City))
	if s := strings.TrimSpace(r.State); s != "" {
		fmt.Fprintf(&sb, " in the state/region %s", s)
	}
	country := strings.TrimSpace(r.Country)
	if country == "" {
		country = DefaultCountry
	}
	fmt.Fprintf(&sb, " in %s", country)
	if d := strings.TrimSpace(r.Date); d != "" {
		fmt.Fprintf(&sb, " for the date %s.", d)
	} else {
		sb.WriteString(" for today.")
	}

	return sb.String()
}

// FinalBriefing returns the briefing a run ended with: the last revision when
// the review loop produced one, the first draft otherwise.
//
// The boolean is false, and the text [NoBriefingMessage], when neither exists.
func FinalBriefing(state map[string]any) (string, bool) {
	for _, key := range []string{KeyBriefingRevised, KeyBriefingDraft} {
		if val, ok := state[key]; ok {
			if text := strings.TrimSpace(types.Stringify(val)); text != "" {
				return text, true
			}
		}
	}
	return NoBriefingMessage, false
}

// Result is the outcome of [Generate].
type Result struct {
	SessionID string
	Briefing  string
	// HasBriefing is false when the run produced neither a draft nor a revision.
	HasBriefing bool
	Metrics     MetricsSummary
	// HasMetrics is false when the metrics stage did not run.
	HasMetrics bool
	State      map[string]any
}

// Generate runs the agent of r for req in a new session of userID and reads
// the final briefing and metrics from the resulting state.
func Generate(ctx context.Context, r *runner.Runner, userID string, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := GenerateText(ctx, r, userID, req.Prompt())
	if err != nil {
		return nil, fmt.Errorf("generate briefing for %s: %w", req.City, err)
	}
	return res, nil
}

// GenerateText runs the pipeline for a free-form request such as
// "daily briefing for Chicago, Illinois" and leaves it to the root agent to
// pick out the location and date.
func GenerateText(ctx context.Context, r *runner.Runner, userID, message string) (*Result, error) {
	if strings.TrimSpace(message) == "" {
		return nil, errors.New("empty briefing request")
	}

	ses, err := r.Run(ctx, userID, message)
	if err != nil {
		return nil, err
	}

	state := ses.State().ToMap()
	res := &Result{
		SessionID: ses.ID(),
		State:     state,
	}
	res.Briefing, res.HasBriefing = FinalBriefing(state)
	res.Metrics, res.HasMetrics = MetricsFromState(state)

	return res, nil
}
