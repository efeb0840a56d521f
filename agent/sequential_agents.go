// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"

	"github.com/go-a2a/arovi/types"
)

// SequentialAgent represents a shell agent that run its sub-agents in sequence.
//
// A sub-agent starts only after the previous one finished, and every event of
// the previous one has been committed by the consumer of the event stream.
type SequentialAgent struct {
	base *types.BaseAgent
}

var _ types.Agent = (*SequentialAgent)(nil)

// NewSequentialAgent creates a new sequential agent with the given name and sub-agents.
func NewSequentialAgent(name string, agents ...types.Agent) *SequentialAgent {
	return NewSequentialAgentWithOptions(name, types.WithSubAgents(agents...))
}

// NewSequentialAgentWithOptions creates a new sequential agent configured by opts.
func NewSequentialAgentWithOptions(name string, opts ...types.Option) *SequentialAgent {
	a := &SequentialAgent{}
	a.base = types.NewBaseAgent(name, opts...).Bind(a)
	return a
}

// Name implements [types.Agent].
func (a *SequentialAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *SequentialAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *SequentialAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SetParentAgent sets the parent agent.
func (a *SequentialAgent) SetParentAgent(parent types.Agent) {
	a.base.SetParentAgent(parent)
}

// SubAgents implements [types.Agent].
func (a *SequentialAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// InputKeys implements [types.Agent].
func (a *SequentialAgent) InputKeys() []string {
	return a.base.InputKeys()
}

// OutputKeys implements [types.Agent].
func (a *SequentialAgent) OutputKeys() []string {
	return unionOutputKeys(a.base)
}

// Execute implements [types.Agent].
func (a *SequentialAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for _, subAgent := range a.base.SubAgents() {
			for event, err := range subAgent.Run(ctx, ictx) {
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(event, nil) {
					return
				}
			}
			if ictx.IsEndInvocation() {
				return
			}
		}
	}
}

// Run implements [types.Agent].
func (a *SequentialAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return a.base.Run(ctx, parentContext)
}

// RootAgent implements [types.Agent].
func (a *SequentialAgent) RootAgent() types.Agent {
	return a.base.RootAgent()
}

// FindAgent implements [types.Agent].
func (a *SequentialAgent) FindAgent(name string) types.Agent {
	return a.base.FindAgent(name)
}

// FindSubAgent implements [types.Agent].
func (a *SequentialAgent) FindSubAgent(name string) types.Agent {
	return a.base.FindSubAgent(name)
}

// unionOutputKeys returns the keys declared by base itself followed by those of every descendant.
func unionOutputKeys(base *types.BaseAgent) []string {
	seen := make(map[string]struct{})
	var keys []string
	add := func(ks []string) {
		for _, k := range ks {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}

	add(base.OutputKeys())
	for _, sub := range base.SubAgents() {
		add(types.CollectOutputKeys(sub))
	}
	return keys
}
