// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/tool"
	"github.com/go-a2a/arovi/types"
)

// GoogleSearchTool represents a built-in tool that is automatically invoked by Gemini models to retrieve search results from Google Search.
//
// This tool operates internally within the model and does not require or perform
// local code execution. Oracles without built-in search ignore it.
type GoogleSearchTool struct {
	*tool.Tool
}

var _ types.Tool = (*GoogleSearchTool)(nil)

// NewGoogleSearchTool returns the new [GoogleSearchTool].
func NewGoogleSearchTool() *GoogleSearchTool {
	return &GoogleSearchTool{
		Tool: tool.NewTool("google_search", "google_search"),
	}
}

// Run implements [types.Tool].
func (t *GoogleSearchTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	return nil, errors.New("google_search is executed by the model")
}

// ProcessLLMRequest implements [types.Tool].
func (t *GoogleSearchTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	if request.Config == nil {
		request.Config = new(genai.GenerateContentConfig)
	}

	if strings.HasPrefix(request.Model, "gemini-1") {
		if len(request.Config.Tools) > 0 {
			return errors.New("google search tool can not be used with other tools in Gemini 1.x")
		}
		request.Config.Tools = append(request.Config.Tools, &genai.Tool{
			GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{},
		})
		return nil
	}

	request.Config.Tools = append(request.Config.Tools, &genai.Tool{
		GoogleSearch: &genai.GoogleSearch{},
	})

	return nil
}
