// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

// Tool represents a base class for all tools.
//
// Concrete tools embed *Tool and override GetDeclaration, Run and
// ProcessLLMRequest.
type Tool struct {
	// The name of the tool.
	name string

	// The description of the tool.
	description string
}

var _ types.Tool = (*Tool)(nil)

// NewTool returns the tool with the given name and description.
func NewTool(name, description string) *Tool {
	return &Tool{
		name:        name,
		description: description,
	}
}

// Name implements [types.Tool].
func (t *Tool) Name() string {
	return t.name
}

// Description implements [types.Tool].
func (t *Tool) Description() string {
	return t.description
}

// GetDeclaration implements [types.Tool].
func (t *Tool) GetDeclaration() *genai.FunctionDeclaration {
	return nil
}

// Run implements [types.Tool].
func (t *Tool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	return nil, types.NotImplementedError("tool " + t.name + " has no Run implementation")
}

// ProcessLLMRequest implements [types.Tool].
//
// The base tool declares nothing. Tools with a declaration register
// themselves with [Declare].
func (t *Tool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	return nil
}

// Declare adds the function declaration of t to request and registers t in
// the request tool map, so that function calls naming t are routed to it.
func Declare(request *types.LLMRequest, t types.Tool) error {
	if t.GetDeclaration() == nil {
		return nil
	}
	request.AppendTools(t)
	return nil
}
