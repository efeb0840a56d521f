// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"maps"
	"reflect"

	"github.com/go-json-experiment/json"
	"google.golang.org/genai"

	"github.com/go-a2a/arovi/tool"
	"github.com/go-a2a/arovi/types"
)

// Function represents a user-defined function that can be called by the model.
type Function func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error)

// FunctionOption configures a [FunctionTool].
type FunctionOption func(*FunctionTool)

// WithParameters sets the parameters schema of the function declaration.
func WithParameters(schema *genai.Schema) FunctionOption {
	return func(t *FunctionTool) {
		t.declaration.Parameters = schema
	}
}

// WithParameterDescription sets a description for a declared parameter.
func WithParameterDescription(param, description string) FunctionOption {
	return func(t *FunctionTool) {
		if t.declaration.Parameters == nil {
			return
		}
		if schema, ok := t.declaration.Parameters.Properties[param]; ok {
			schema.Description = description
		}
	}
}

// WithResponse sets the response schema of the function declaration.
func WithResponse(schema *genai.Schema) FunctionOption {
	return func(t *FunctionTool) {
		t.declaration.Response = schema
	}
}

// FunctionTool represents a tool that wraps a user-defined function.
type FunctionTool struct {
	*tool.Tool

	fn          Function
	declaration *genai.FunctionDeclaration
}

var _ types.Tool = (*FunctionTool)(nil)

// NewFunctionTool returns the new [FunctionTool] with the given name, description and function.
//
// Without [WithParameters] the function is declared with an empty object schema.
func NewFunctionTool(name, description string, fn Function, opts ...FunctionOption) *FunctionTool {
	t := &FunctionTool{
		Tool: tool.NewTool(name, description),
		fn:   fn,
		declaration: &genai.FunctionDeclaration{
			Name:        name,
			Description: description,
			Parameters:  &genai.Schema{Type: genai.TypeObject},
		},
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// NewTypedFunctionTool returns a [FunctionTool] whose parameters schema is derived from the struct type T
// and whose arguments are decoded into T before fn is called.
//
// For example:
//
//	type searchArgs struct {
//		Query string `json:"query" description:"Search query"`
//		Limit int    `json:"limit,omitempty"`
//	}
//
//	search, err := tools.NewTypedFunctionTool("search", "Search for items",
//		func(ctx context.Context, args searchArgs, _ *types.ToolContext) ([]string, error) {
//			// implementation
//		},
//	)
func NewTypedFunctionTool[T, R any](name, description string, fn func(context.Context, T, *types.ToolContext) (R, error), opts ...FunctionOption) (*FunctionTool, error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("function tool %s: arguments must be a struct, got %v", name, rt)
	}
	params, err := schemaFor(rt)
	if err != nil {
		return nil, fmt.Errorf("function tool %s: build parameters schema: %w", name, err)
	}

	wrapped := func(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
		typed, err := decodeArgs[T](args)
		if err != nil {
			return nil, fmt.Errorf("decode %s arguments: %w", name, err)
		}
		return fn(ctx, typed, toolCtx)
	}

	return NewFunctionTool(name, description, wrapped, append([]FunctionOption{WithParameters(params)}, opts...)...), nil
}

// decodeArgs converts the generic arguments the model sent into T.
func decodeArgs[T any](args map[string]any) (T, error) {
	var typed T
	if len(args) == 0 {
		return typed, nil
	}

	data, err := json.Marshal(args)
	if err != nil {
		return typed, err
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return typed, err
	}

	return typed, nil
}

// GetDeclaration implements [types.Tool].
func (t *FunctionTool) GetDeclaration() *genai.FunctionDeclaration {
	return t.declaration
}

// Run implements [types.Tool].
func (t *FunctionTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	return t.fn(ctx, maps.Clone(args), toolCtx)
}

// ProcessLLMRequest implements [types.Tool].
func (t *FunctionTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	return tool.Declare(request, t)
}
