// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

// FuncResult is the outcome of a [Func].
type FuncResult struct {
	// StateDelta is committed to the session state. Keys must be declared as output keys of the agent.
	StateDelta map[string]any

	// Text is the human readable progress record of the step.
	Text string

	// Escalate stops an enclosing [LoopAgent].
	Escalate bool
}

// Func is the deterministic computation of a [FuncAgent].
//
// state exposes only the input keys of the agent when it declares any.
type Func func(ctx context.Context, state types.StateView) (*FuncResult, error)

// FuncAgent is an agent that computes a state delta locally, without calling a model.
type FuncAgent struct {
	base *types.BaseAgent
	fn   Func
}

var _ types.Agent = (*FuncAgent)(nil)

// NewFuncAgent creates a new [FuncAgent] running fn.
func NewFuncAgent(name string, fn Func, opts ...types.Option) *FuncAgent {
	a := &FuncAgent{
		fn: fn,
	}
	a.base = types.NewBaseAgent(name, opts...).Bind(a)
	return a
}

// Name implements [types.Agent].
func (a *FuncAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *FuncAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *FuncAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SetParentAgent sets the parent agent.
func (a *FuncAgent) SetParentAgent(parent types.Agent) {
	a.base.SetParentAgent(parent)
}

// SubAgents implements [types.Agent].
func (a *FuncAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// InputKeys implements [types.Agent].
func (a *FuncAgent) InputKeys() []string {
	return a.base.InputKeys()
}

// OutputKeys implements [types.Agent].
func (a *FuncAgent) OutputKeys() []string {
	return a.base.OutputKeys()
}

// Execute implements [types.Agent].
func (a *FuncAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		result, err := a.fn(ctx, types.NewReadOnlyContext(ictx).State())
		if err != nil {
			yield(nil, err)
			return
		}
		if result == nil {
			return
		}

		actions := types.NewEventActions().WithEscalate(result.Escalate)
		if result.StateDelta != nil {
			actions.WithStateDelta(result.StateDelta)
		}

		event := types.NewEvent().
			WithInvocationID(ictx.InvocationID).
			WithAuthor(a.Name()).
			WithBranch(ictx.Branch).
			WithActions(actions)
		if result.Text != "" {
			event.WithContent(genai.NewContentFromText(result.Text, genai.RoleModel))
		}

		yield(event, nil)
	}
}

// Run implements [types.Agent].
func (a *FuncAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return a.base.Run(ctx, parentContext)
}

// RootAgent implements [types.Agent].
func (a *FuncAgent) RootAgent() types.Agent {
	return a.base.RootAgent()
}

// FindAgent implements [types.Agent].
func (a *FuncAgent) FindAgent(name string) types.Agent {
	return a.base.FindAgent(name)
}

// FindSubAgent implements [types.Agent].
func (a *FuncAgent) FindSubAgent(name string) types.Agent {
	return a.base.FindSubAgent(name)
}
