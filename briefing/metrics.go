// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package briefing

import (
	"context"
	"log/slog"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-a2a/arovi/agent"
	"github.com/go-a2a/arovi/pkg/logging"
	"github.com/go-a2a/arovi/structured"
	"github.com/go-a2a/arovi/types"
)

// MetricsAgentName is the name of the metrics stage.
const MetricsAgentName = "metrics_agent"

// looseItems and looseReport read counts from values of any shape, typed or not.
type looseItems struct {
	Items []map[string]any `json:"items"`
}

type looseReport struct {
	Issues []any `json:"issues"`
}

func countItems(state types.StateView, key string) []map[string]any {
	return structured.ParseOr(state.String(key), looseItems{}).Items
}

// ComputeMetrics aggregates the counts of a run from state.
//
// Absent or malformed values count as empty.
func ComputeMetrics(state types.StateView) MetricsSummary {
	tagged := countItems(state, KeyTaggedItems)

	m := MetricsSummary{
		TotalItems:       len(tagged),
		ItemsByRegion:    make(map[string]int),
		RiskIssueCount:   len(structured.ParseOr(state.String(KeyRiskReport), looseReport{}).Issues),
		ItemsGlobalCount: len(countItems(state, KeyItemsGlobalRaw)),
		ItemsUSCount:     len(countItems(state, KeyItemsUSRaw)),
		ItemsStateCount:  len(countItems(state, KeyItemsStateRaw)),
		ItemsCityCount:   len(countItems(state, KeyItemsCityRaw)),
		TaggedItemsCount: len(countItems(state, KeyTaggedItemsRaw)),
	}
	for _, item := range tagged {
		m.ItemsByRegion[RegionBucket(field(item, "region"))]++
	}

	return m
}

// FormatMetrics renders m as the human readable metrics report.
func FormatMetrics(m MetricsSummary) string {
	b, err := json.Marshal(m, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		b = []byte("{}")
	}
	return "Arovi metrics summary:\n```json\n" + string(b) + "\n```"
}

// NewMetricsAgent returns the procedural stage writing [MetricsSummary] under metrics_summary.
func NewMetricsAgent() *agent.FuncAgent {
	fn := func(ctx context.Context, state types.StateView) (*agent.FuncResult, error) {
		m := ComputeMetrics(state)

		logging.FromContext(ctx).InfoContext(ctx, "arovi metrics",
			slog.Int("total_items", m.TotalItems),
			slog.Int("tagged_items_count", m.TaggedItemsCount),
			slog.Int("risk_issue_count", m.RiskIssueCount),
		)

		return &agent.FuncResult{
			StateDelta: map[string]any{KeyMetricsSummary: m},
			Text:       FormatMetrics(m),
		}, nil
	}

	return agent.NewFuncAgent(MetricsAgentName, fn,
		types.WithDescription("Computes and logs Arovi metrics."),
		types.WithInputKeys(append([]string{KeyTaggedItems, KeyTaggedItemsRaw, KeyRiskReport}, IngestionKeys...)...),
		types.WithOutputKeys(KeyMetricsSummary),
	)
}

// MetricsFromState reads the metrics summary of a finished run from state values of any shape.
func MetricsFromState(state map[string]any) (MetricsSummary, bool) {
	val, ok := state[KeyMetricsSummary]
	if !ok {
		return MetricsSummary{}, false
	}
	if m, ok := val.(MetricsSummary); ok {
		return m, true
	}
	m, err := structured.Parse[MetricsSummary](types.Stringify(val))
	return m, err == nil
}
