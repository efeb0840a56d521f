// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-a2a/arovi/briefing"
)

var (
	metricsTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7AA2F7"))
	metricsLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9AA5CE")).Width(22)
	metricsBoxStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#565F89")).
				Padding(0, 1)
)

// renderMetrics lays out the metrics summary of a run as a bordered box.
func renderMetrics(m briefing.MetricsSummary) string {
	row := func(label string, value int) string {
		return metricsLabelStyle.Render(label) + fmt.Sprint(value)
	}

	rows := []string{
		metricsTitleStyle.Render("Arovi metrics"),
		row("Tagged items", m.TotalItems),
		row("Risk issues", m.RiskIssueCount),
		row("Raw global items", m.ItemsGlobalCount),
		row("Raw national items", m.ItemsUSCount),
		row("Raw state items", m.ItemsStateCount),
		row("Raw city items", m.ItemsCityCount),
	}
	if len(m.ItemsByRegion) > 0 {
		var parts []string
		for _, region := range slices.Sorted(maps.Keys(m.ItemsByRegion)) {
			parts = append(parts, fmt.Sprintf("%s=%d", region, m.ItemsByRegion[region]))
		}
		rows = append(rows, metricsLabelStyle.Render("By region")+strings.Join(parts, " "))
	}

	return metricsBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
