// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

// BaseLLM holds what every oracle implementation shares.
type BaseLLM struct {
	// modelName represents the specific LLM model name.
	modelName string

	logger *slog.Logger
}

var _ types.Model = (*BaseLLM)(nil)

// NewBaseLLM returns the new [BaseLLM] with the specified model name.
func NewBaseLLM(modelName string) *BaseLLM {
	return &BaseLLM{
		modelName: modelName,
		logger:    slog.Default(),
	}
}

// Name implements [types.Model].
func (m *BaseLLM) Name() string {
	return m.modelName
}

// SetLogger replaces the logger used for request and response logging.
func (m *BaseLLM) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// GenerateContent implements [types.Model].
func (m *BaseLLM) GenerateContent(context.Context, *types.LLMRequest) (*types.LLMResponse, error) {
	return nil, types.NotImplementedError(fmt.Sprintf("BaseLLM: generation is not supported for %s", m.modelName))
}

// ensureUserContent checks if the last message is from the user and if not, appends a user message.
func ensureUserContent(contents []*genai.Content) []*genai.Content {
	switch {
	case len(contents) == 0:
		return append(contents, genai.NewContentFromText(`Handle the requests as specified in the System Instruction.`, genai.RoleUser))

	case strings.ToLower(contents[len(contents)-1].Role) != genai.RoleUser:
		return append(contents, genai.NewContentFromText(
			`Continue processing previous requests as instructed. Exit or provide a summary if no more outputs are needed.`,
			genai.RoleUser,
		))

	default:
		return contents
	}
}

const responseLogFmt = `
LLM Response:
-----------------------------------------------------------
Text:
%s
-----------------------------------------------------------
Function calls:
%s
-----------------------------------------------------------
`

func buildResponseLog(resp *types.LLMResponse) slog.Attr {
	var functionCallsText []string
	if resp.Content != nil {
		for _, part := range resp.Content.Parts {
			if part.FunctionCall != nil {
				functionCallsText = append(functionCallsText, fmt.Sprintf("name: %s, args: %v", part.FunctionCall.Name, part.FunctionCall.Args))
			}
		}
	}

	return slog.String("response", fmt.Sprintf(responseLogFmt, resp.Text(), strings.Join(functionCallsText, "\n")))
}
