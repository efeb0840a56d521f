// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools provides the tools used by the briefing pipeline.
//
//   - [FunctionTool] wraps a Go function. [NewTypedFunctionTool] derives the
//     parameters schema from an argument struct and decodes the model's
//     arguments into it.
//   - [AgentTool] runs an agent in an isolated child session and merges the
//     resulting state delta back into the caller's state.
//   - [GoogleSearchTool] and [URLContextTool] enable the model's built-in
//     search and URL retrieval.
//   - [WebPageTool] fetches a page and returns its readable text.
//   - [NewExitLoopTool] lets the model end the enclosing loop.
//
// Declaring a typed function tool:
//
//	type filterArgs struct {
//		Items []map[string]any `json:"items"`
//	}
//
//	filter, err := tools.NewTypedFunctionTool("filter_and_dedupe_tool", "Drops invalid and duplicate items.",
//		func(ctx context.Context, args filterArgs, _ *types.ToolContext) (FilterResult, error) {
//			return FilterAndDedupe(args.Items, 0), nil
//		},
//	)
package tools
