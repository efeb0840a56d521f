// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

// GeminiDefaultModel is the default model name for [Gemini].
const GeminiDefaultModel = "gemini-2.5-flash"

// Gemini represents a Google Gemini Large Language Model.
type Gemini struct {
	*BaseLLM

	genAIClient *genai.Client
}

var _ types.Model = (*Gemini)(nil)

// NewGemini creates a new [Gemini] instance.
//
// An empty apiKey falls back to the [EnvGoogleAPIKey] environment variable.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if modelName == "" {
		modelName = GeminiDefaultModel
	}

	if apiKey == "" {
		apiKey = os.Getenv(EnvGoogleAPIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("either apiKey arg or %q environment variable must be set", EnvGoogleAPIKey)
		}
	}

	genAIClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Gemini{
		BaseLLM:     NewBaseLLM(modelName),
		genAIClient: genAIClient,
	}, nil
}

// GenerateContent implements [types.Model].
func (m *Gemini) GenerateContent(ctx context.Context, request *types.LLMRequest) (*types.LLMResponse, error) {
	contents := ensureUserContent(request.Contents)

	config := &genai.GenerateContentConfig{}
	if request.Config != nil {
		c := *request.Config
		config = &c
	}

	m.logger.DebugContext(ctx, "sending request to gemini",
		slog.String("model", m.modelName),
		slog.Int("contents", len(contents)),
		slog.Int("tools", len(request.ToolMap)),
	)

	resp, err := m.genAIClient.Models.GenerateContent(ctx, m.modelName, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	llmResp := types.NewLLMResponse(resp)
	m.logger.DebugContext(ctx, "gemini response", buildResponseLog(llmResp))

	return llmResp, nil
}
