// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/go-a2a/arovi/types"
)

// ExitLoop exits the loop.
//
// Call this function only when you are instructed to do so.
func ExitLoop(_ context.Context, _ map[string]any, toolCtx *types.ToolContext) (any, error) {
	toolCtx.Actions().Escalate = true
	return map[string]any{}, nil
}

// NewExitLoopTool returns a [FunctionTool] that lets the model end the enclosing loop.
func NewExitLoopTool() *FunctionTool {
	return NewFunctionTool("exit_loop",
		"Exits the loop. Call this function only when you are instructed to do so.",
		ExitLoop,
	)
}
