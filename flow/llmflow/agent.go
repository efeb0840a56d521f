// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

// Agent is the view of a generative agent the flow works with.
type Agent interface {
	types.Agent

	// CanonicalModel returns the resolved oracle of the agent.
	CanonicalModel(ctx context.Context) (types.Model, error)

	// CanonicalInstruction returns the instruction and whether state injection must be bypassed.
	CanonicalInstruction(rctx *types.ReadOnlyContext) (string, bool)

	// CanonicalTools returns the tools of the agent.
	CanonicalTools() []types.Tool

	// GenerateContentConfig returns the generation config of the agent, may be nil.
	GenerateContentConfig() *genai.GenerateContentConfig

	// OutputSchema returns the response schema of the agent, may be nil.
	OutputSchema() *genai.Schema

	BeforeModelCallbacks() []types.BeforeModelCallback
	AfterModelCallbacks() []types.AfterModelCallback
	BeforeToolCallbacks() []types.BeforeToolCallback
	AfterToolCallbacks() []types.AfterToolCallback
}

// RequestProcessor contributes to the request of one flow step.
type RequestProcessor interface {
	ProcessRequest(ctx context.Context, ictx *types.InvocationContext, agent Agent, request *types.LLMRequest) error
}
