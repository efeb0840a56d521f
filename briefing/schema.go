// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package briefing

import (
	"google.golang.org/genai"

	"github.com/go-a2a/arovi/structured"
)

var stringArray = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

var newsItemListSchema = structured.MustCompileSchema(map[string]any{
	"type":     "object",
	"required": []any{"items"},
	"properties": map[string]any{
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"required": []any{
					"region", "title", "source", "url", "published_date",
					"summary", "topic", "sentiment", "public_health_relevance",
				},
				"properties": map[string]any{
					"region":                  map[string]any{"type": "string"},
					"title":                   map[string]any{"type": "string"},
					"source":                  map[string]any{"type": "string"},
					"url":                     map[string]any{"type": "string"},
					"published_date":          map[string]any{"type": "string"},
					"summary":                 map[string]any{"type": "string"},
					"topic":                   map[string]any{"type": "string"},
					"sentiment":               map[string]any{"type": "string"},
					"public_health_relevance": map[string]any{"type": "string"},
				},
			},
		},
	},
})

var trendNotesSchema = structured.MustCompileSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"key_trends":                stringArray,
		"risks":                     stringArray,
		"positive_developments":     stringArray,
		"notes_for_briefing_writer": map[string]any{"type": "string"},
	},
})

var riskReportSchema = structured.MustCompileSchema(map[string]any{
	"type":     "object",
	"required": []any{"is_safe"},
	"properties": map[string]any{
		"is_safe": map[string]any{"type": "boolean"},
		"issues": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"type", "excerpt"},
				"properties": map[string]any{
					"type":          map[string]any{"type": "string"},
					"excerpt":       map[string]any{"type": "string"},
					"suggested_fix": map[string]any{"type": "string"},
				},
			},
		},
		"high_level_feedback": map[string]any{"type": "string"},
	},
})

// Response schemas asked of the oracle for the stages without tools. The
// parser stages validate against the JSON Schemas above either way.
var (
	genaiStringArray = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}

	trendNotesResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"key_trends":                genaiStringArray,
			"risks":                     genaiStringArray,
			"positive_developments":     genaiStringArray,
			"notes_for_briefing_writer": {Type: genai.TypeString},
		},
		Required: []string{"key_trends", "risks", "positive_developments", "notes_for_briefing_writer"},
	}

	riskReportResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"is_safe": {Type: genai.TypeBoolean},
			"issues": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type": {
							Type: genai.TypeString,
							Enum: []string{"political", "speculative", "sensational", "unsupported_claim"},
						},
						"excerpt":       {Type: genai.TypeString},
						"suggested_fix": {Type: genai.TypeString},
					},
					Required: []string{"type", "excerpt", "suggested_fix"},
				},
			},
			"high_level_feedback": {Type: genai.TypeString},
		},
		Required: []string{"is_safe", "issues", "high_level_feedback"},
	}
)
