// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package briefing

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/go-a2a/arovi/tool/tools"
	"github.com/go-a2a/arovi/types"
)

// DefaultMinRelevanceLen is the minimum length, in characters, of the public
// health relevance of an item kept by [FilterAndDedupe].
const DefaultMinRelevanceLen = 40

// FilterAndDedupeToolName is the name the oracle calls [FilterAndDedupe] by.
const FilterAndDedupeToolName = "filter_and_dedupe_tool"

// FilterResult is the result of [FilterAndDedupe].
type FilterResult struct {
	FilteredItems []map[string]any `json:"filtered_items"`
	FilteredCount int              `json:"filtered_count"`
	OriginalCount int              `json:"original_count"`
}

// FilterAndDedupe drops items without a title or region, items whose public
// health relevance is shorter than minRelevanceLen, and items whose
// (region, title) pair was already seen, compared case-insensitively.
//
// Kept items are returned unchanged in first-seen order. A minRelevanceLen of
// zero or less means [DefaultMinRelevanceLen].
func FilterAndDedupe(items []map[string]any, minRelevanceLen int) FilterResult {
	if minRelevanceLen <= 0 {
		minRelevanceLen = DefaultMinRelevanceLen
	}

	seen := make(map[string]struct{}, len(items))
	filtered := make([]map[string]any, 0, len(items))
	for _, item := range items {
		title := field(item, "title")
		region := field(item, "region")
		relevance := field(item, "public_health_relevance")

		if title == "" || region == "" {
			continue
		}
		if utf8.RuneCountInString(relevance) < minRelevanceLen {
			continue
		}

		key := strings.ToLower(region) + "\x00" + strings.ToLower(title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		filtered = append(filtered, item)
	}

	return FilterResult{
		FilteredItems: filtered,
		FilteredCount: len(filtered),
		OriginalCount: len(items),
	}
}

// field returns the trimmed string value of key, or "" when it is absent or not a string.
func field(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return strings.TrimSpace(s)
}

type filterArgs struct {
	Items           []map[string]any `json:"items" description:"The merged news items of every region."`
	MinRelevanceLen int              `json:"min_relevance_len,omitempty" description:"Minimum length of public_health_relevance."`
}

// NewFilterAndDedupeTool exposes [FilterAndDedupe] to the oracle as filter_and_dedupe_tool.
//
// minRelevanceLen applies when the oracle does not pass min_relevance_len.
func NewFilterAndDedupeTool(minRelevanceLen int) (*tools.FunctionTool, error) {
	return tools.NewTypedFunctionTool(FilterAndDedupeToolName,
		"Drops news items without a title or region or with a short public_health_relevance, "+
			"and removes duplicates by (region, title). Returns filtered_items, filtered_count and original_count.",
		func(_ context.Context, args filterArgs, _ *types.ToolContext) (FilterResult, error) {
			threshold := args.MinRelevanceLen
			if threshold <= 0 {
				threshold = minRelevanceLen
			}
			return FilterAndDedupe(args.Items, threshold), nil
		},
	)
}
