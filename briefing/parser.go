// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package briefing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-a2a/arovi/agent"
	"github.com/go-a2a/arovi/pkg/logging"
	"github.com/go-a2a/arovi/structured"
	"github.com/go-a2a/arovi/types"
)

// ParseKind selects the structured type a parser stage produces.
type ParseKind int

const (
	// ParseNewsItems parses a [NewsItemList].
	ParseNewsItems ParseKind = iota
	// ParseTrendNotes parses [TrendNotes].
	ParseTrendNotes
	// ParseRiskReport parses a [RiskReport].
	ParseRiskReport
)

// String implements [fmt.Stringer].
func (k ParseKind) String() string {
	switch k {
	case ParseNewsItems:
		return "news items"
	case ParseTrendNotes:
		return "trend notes"
	case ParseRiskReport:
		return "risk report"
	default:
		return fmt.Sprintf("ParseKind(%d)", int(k))
	}
}

// EmptyNewsItemList returns the value a news item parser stage writes for unusable input.
func EmptyNewsItemList() NewsItemList {
	return NewsItemList{Items: []NewsItem{}}
}

// EmptyTrendNotes returns the value a trend notes parser stage writes for unusable input.
func EmptyTrendNotes() TrendNotes {
	return TrendNotes{
		KeyTrends:            []string{},
		Risks:                []string{},
		PositiveDevelopments: []string{},
	}
}

// EmptyRiskReport returns the value a risk report parser stage writes for unusable input.
func EmptyRiskReport() RiskReport {
	return RiskReport{Issues: []RiskIssue{}}
}

// ParseNewsItemList parses text into a normalized [NewsItemList].
func ParseNewsItemList(text string) (NewsItemList, error) {
	v, err := structured.Parse[NewsItemList](text, structured.WithSchema(newsItemListSchema))
	if err != nil {
		return EmptyNewsItemList(), err
	}
	return v.Normalize(), nil
}

// ParseTrendNotesText parses text into normalized [TrendNotes].
func ParseTrendNotesText(text string) (TrendNotes, error) {
	v, err := structured.Parse[TrendNotes](text, structured.WithSchema(trendNotesSchema))
	if err != nil {
		return EmptyTrendNotes(), err
	}
	return v.Normalize(), nil
}

// ParseRiskReportText parses text into a normalized [RiskReport].
func ParseRiskReportText(text string) (RiskReport, error) {
	v, err := structured.Parse[RiskReport](text, structured.WithSchema(riskReportSchema))
	if err != nil {
		return EmptyRiskReport(), err
	}
	return v.Normalize(), nil
}

type parserConfig struct {
	escalateWhenSafe bool
}

// ParserOption configures a parser stage.
type ParserOption func(*parserConfig)

// WithEscalateWhenSafe makes a risk report parser stage escalate, ending the
// enclosing loop, once it parses a safe report without issues.
func WithEscalateWhenSafe(escalate bool) ParserOption {
	return func(c *parserConfig) {
		c.escalateWhenSafe = escalate
	}
}

// NewParserAgent returns a procedural stage that parses the raw text under
// inputKey into the structured type selected by kind and writes it under
// outputKey.
//
// Unusable input never fails the stage: the empty value of the type is
// written instead and the failure is logged at WARN.
func NewParserAgent(name, inputKey, outputKey string, kind ParseKind, opts ...ParserOption) *agent.FuncAgent {
	cfg := new(parserConfig)
	for _, opt := range opts {
		opt(cfg)
	}

	fn := func(ctx context.Context, state types.StateView) (*agent.FuncResult, error) {
		raw := state.String(inputKey)

		var (
			value    any
			summary  string
			escalate bool
			err      error
		)
		switch kind {
		case ParseNewsItems:
			var v NewsItemList
			v, err = ParseNewsItemList(raw)
			value = v
			summary = fmt.Sprintf("Parsed %d news items into %s.", len(v.Items), outputKey)
		case ParseTrendNotes:
			var v TrendNotes
			v, err = ParseTrendNotesText(raw)
			value = v
			summary = fmt.Sprintf("Parsed %d key trends into %s.", len(v.KeyTrends), outputKey)
		case ParseRiskReport:
			var v RiskReport
			v, err = ParseRiskReportText(raw)
			value = v
			summary = fmt.Sprintf("Parsed risk report with %d issues into %s (safe: %t).", len(v.Issues), outputKey, v.IsSafe)
			escalate = cfg.escalateWhenSafe && err == nil && v.IsSafe && len(v.Issues) == 0
		default:
			return nil, fmt.Errorf("parser %s: unknown kind %v", name, kind)
		}

		if err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "unusable stage output, using empty default",
				slog.String("stage", name),
				slog.String("input_key", inputKey),
				slog.String("kind", kind.String()),
				slog.Any("error", err),
			)
		}

		return &agent.FuncResult{
			StateDelta: map[string]any{outputKey: value},
			Text:       summary,
			Escalate:   escalate,
		}, nil
	}

	return agent.NewFuncAgent(name, fn,
		types.WithDescription(fmt.Sprintf("Parses %s from %s into %s.", kind, inputKey, outputKey)),
		types.WithInputKeys(inputKey),
		types.WithOutputKeys(outputKey),
	)
}
