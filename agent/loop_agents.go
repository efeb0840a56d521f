// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"iter"
	"log/slog"

	"github.com/go-a2a/arovi/types"
)

// DefaultMaxIterations is the iteration cap of a [LoopAgent] created without [LoopAgent.WithMaxIterations].
const DefaultMaxIterations = 10

// LoopAgent runs its sub-agents in sequence, repeatedly.
//
// One iteration is one pass over all sub-agents. The loop stops after
// maxIterations iterations or as soon as a sub-agent emits an event with
// [types.EventActions.Escalate] set.
type LoopAgent struct {
	base *types.BaseAgent

	// The maximum number of iterations to run the loop agent.
	//
	// Zero means the loop runs until a sub-agent escalates.
	maxIterations int
}

var _ types.Agent = (*LoopAgent)(nil)

// NewLoopAgent creates a new loop agent with the given name and sub-agents.
func NewLoopAgent(name string, agents ...types.Agent) *LoopAgent {
	return NewLoopAgentWithOptions(name, types.WithSubAgents(agents...))
}

// NewLoopAgentWithOptions creates a new loop agent configured by opts.
func NewLoopAgentWithOptions(name string, opts ...types.Option) *LoopAgent {
	a := &LoopAgent{
		maxIterations: DefaultMaxIterations,
	}
	a.base = types.NewBaseAgent(name, opts...).Bind(a)
	return a
}

// WithMaxIterations sets the maximum number of iterations.
func (a *LoopAgent) WithMaxIterations(maxIterations int) *LoopAgent {
	a.maxIterations = max(maxIterations, 0)
	return a
}

// MaxIterations returns the maximum number of iterations.
func (a *LoopAgent) MaxIterations() int {
	return a.maxIterations
}

// Name implements [types.Agent].
func (a *LoopAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *LoopAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *LoopAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SetParentAgent sets the parent agent.
func (a *LoopAgent) SetParentAgent(parent types.Agent) {
	a.base.SetParentAgent(parent)
}

// SubAgents implements [types.Agent].
func (a *LoopAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// InputKeys implements [types.Agent].
func (a *LoopAgent) InputKeys() []string {
	return a.base.InputKeys()
}

// OutputKeys implements [types.Agent].
func (a *LoopAgent) OutputKeys() []string {
	return unionOutputKeys(a.base)
}

// Execute implements [types.Agent].
func (a *LoopAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		logger := a.base.Logger()

		for iteration := 1; a.maxIterations == 0 || iteration <= a.maxIterations; iteration++ {
			logger.DebugContext(ctx, "loop iteration",
				slog.String("agent", a.Name()),
				slog.Int("iteration", iteration),
				slog.Int("max_iterations", a.maxIterations),
			)

			for _, subAgent := range a.base.SubAgents() {
				for event, err := range subAgent.Run(ctx, ictx) {
					if err != nil {
						yield(nil, err)
						return
					}
					if !yield(event, nil) {
						return
					}

					if event.Actions != nil && event.Actions.Escalate {
						logger.InfoContext(ctx, "loop escalated",
							slog.String("agent", a.Name()),
							slog.String("by", event.Author),
							slog.Int("iteration", iteration),
						)
						return
					}
				}
				if ictx.IsEndInvocation() {
					return
				}
			}
		}
	}
}

// Run implements [types.Agent].
func (a *LoopAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return a.base.Run(ctx, parentContext)
}

// RootAgent implements [types.Agent].
func (a *LoopAgent) RootAgent() types.Agent {
	return a.base.RootAgent()
}

// FindAgent implements [types.Agent].
func (a *LoopAgent) FindAgent(name string) types.Agent {
	return a.base.FindAgent(name)
}

// FindSubAgent implements [types.Agent].
func (a *LoopAgent) FindSubAgent(name string) types.Agent {
	return a.base.FindSubAgent(name)
}
