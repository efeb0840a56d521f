// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"iter"

	"google.golang.org/genai"
)

// AgentCallback represents a callback function that can be invoked before or after an agent runs.
//
// A non-nil content returned from a before callback ends the invocation with that content.
type AgentCallback func(cctx *CallbackContext) (*genai.Content, error)

// Agent represents a stage of a workflow.
//
// A stage is either generative (it calls the oracle) or procedural (it computes
// a state delta locally), or a composition of other stages.
type Agent interface {
	// Name returns the agent's name.
	//
	// Agent name must be a Go identifier and unique within the agent tree.
	// Agent name cannot be "user", since it's reserved for end-user's input.
	Name() string

	// Description returns the description about the agent's capability.
	Description() string

	// ParentAgent is the parent agent of this agent.
	//
	// Note that an agent can ONLY be added as sub-agent once.
	ParentAgent() Agent

	// SubAgents returns the sub-agents of this agent.
	SubAgents() []Agent

	// InputKeys returns the state keys this agent reads.
	//
	// An empty result means the agent may read any key.
	InputKeys() []string

	// OutputKeys returns the state keys this agent is allowed to write.
	//
	// For composite agents this is the union of the sub-agents' output keys.
	OutputKeys() []string

	// Execute is the core logic to run this agent.
	Execute(ctx context.Context, ictx *InvocationContext) iter.Seq2[*Event, error]

	// Run is the entry method to run an agent.
	//
	// Run wraps Execute with the before/after callbacks and enforces the
	// output key contract.
	Run(ctx context.Context, parentContext *InvocationContext) iter.Seq2[*Event, error]

	// RootAgent returns the root agent of this agent.
	RootAgent() Agent

	// FindAgent finds the agent with the given name in this agent and its descendants.
	FindAgent(name string) Agent

	// FindSubAgent finds the agent with the given name in this agent's descendants.
	FindSubAgent(name string) Agent
}

// InstructionProvider is a function that provides instructions based on context.
type InstructionProvider func(rctx *ReadOnlyContext) string

// BeforeModelCallback is called before sending a request to the model.
//
// A non-nil response skips the model call.
type BeforeModelCallback func(cctx *CallbackContext, request *LLMRequest) (*LLMResponse, error)

// AfterModelCallback is called after receiving a response from the model.
type AfterModelCallback func(cctx *CallbackContext, response *LLMResponse) (*LLMResponse, error)

// BeforeToolCallback is called before executing a tool.
type BeforeToolCallback func(tool Tool, args map[string]any, toolCtx *ToolContext) (map[string]any, error)

// AfterToolCallback is called after executing a tool.
type AfterToolCallback func(tool Tool, args map[string]any, toolCtx *ToolContext, toolResponse map[string]any) (map[string]any, error)

// CollectOutputKeys returns the output keys declared by agent and all of its descendants, without duplicates.
func CollectOutputKeys(agent Agent) []string {
	seen := make(map[string]struct{})
	var keys []string
	var walk func(a Agent)
	walk = func(a Agent) {
		for _, key := range a.OutputKeys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		for _, sub := range a.SubAgents() {
			walk(sub)
		}
	}
	walk(agent)

	return keys
}
