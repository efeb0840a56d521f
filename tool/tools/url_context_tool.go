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

// URLContextTool represents a built-in tool that lets Gemini 2 models retrieve the content of URLs found by search
// and use that content to inform and shape its response.
//
// This tool operates internally within the model and does not require or perform
// local code execution.
type URLContextTool struct {
	*tool.Tool
}

var _ types.Tool = (*URLContextTool)(nil)

// NewURLContextTool returns the new [URLContextTool].
func NewURLContextTool() *URLContextTool {
	return &URLContextTool{
		Tool: tool.NewTool("url_context", "url_context"),
	}
}

// ProcessLLMRequest implements [types.Tool].
func (t *URLContextTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	if strings.HasPrefix(request.Model, "gemini-1") {
		return errors.New("url context tool can not be used in Gemini 1.x")
	}
	if request.Config == nil {
		request.Config = new(genai.GenerateContentConfig)
	}

	request.Config.Tools = append(request.Config.Tools, &genai.Tool{
		URLContext: &genai.URLContext{},
	})

	return nil
}
