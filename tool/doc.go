// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package tool provides the base type embedded by every tool.
//
// A tool is exposed to the model by its function declaration. During request
// construction each tool of an agent gets a chance to edit the outgoing
// [types.LLMRequest]; tools with a declaration register themselves in the
// request tool map with [Declare], and only function calls naming a registered
// tool are executed:
//
//	type weatherTool struct {
//		*tool.Tool
//	}
//
//	func (t *weatherTool) GetDeclaration() *genai.FunctionDeclaration {
//		return &genai.FunctionDeclaration{Name: t.Name(), Description: t.Description()}
//	}
//
//	func (t *weatherTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
//		return tool.Declare(request, t)
//	}
//
// Built-in tools such as Google Search have no declaration; they edit the
// request config instead and are executed by the model itself.
package tool
