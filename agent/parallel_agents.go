// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"fmt"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/go-a2a/arovi/types"
)

// ParallelAgent is a shell agent that runs its sub-agents concurrently in isolated branches.
//
// Every branch must declare output keys disjoint from the other branches;
// the check happens at construction. The agent finishes when all branches
// finished.
type ParallelAgent struct {
	base *types.BaseAgent
}

var _ types.Agent = (*ParallelAgent)(nil)

// NewParallelAgent creates a new parallel agent with the given name and sub-agents.
//
// It panics if two sub-agents declare the same output key.
func NewParallelAgent(name string, agents ...types.Agent) *ParallelAgent {
	return NewParallelAgentWithOptions(name, types.WithSubAgents(agents...))
}

// NewParallelAgentWithOptions creates a new parallel agent configured by opts.
//
// It panics if two sub-agents declare the same output key.
func NewParallelAgentWithOptions(name string, opts ...types.Option) *ParallelAgent {
	a := &ParallelAgent{}
	a.base = types.NewBaseAgent(name, opts...)
	if err := checkDisjointOutputKeys(a.base.SubAgents()); err != nil {
		panic(fmt.Errorf("parallel agent %s: %w", name, err))
	}
	a.base.Bind(a)
	return a
}

// checkDisjointOutputKeys reports an error when two agents declare the same output key.
func checkDisjointOutputKeys(agents []types.Agent) error {
	owner := make(map[string]string)
	for _, sub := range agents {
		for _, key := range types.CollectOutputKeys(sub) {
			if other, ok := owner[key]; ok {
				return fmt.Errorf("output key %q is declared by both %s and %s", key, other, sub.Name())
			}
			owner[key] = sub.Name()
		}
	}
	return nil
}

// Name implements [types.Agent].
func (a *ParallelAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *ParallelAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *ParallelAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SetParentAgent sets the parent agent.
func (a *ParallelAgent) SetParentAgent(parent types.Agent) {
	a.base.SetParentAgent(parent)
}

// SubAgents implements [types.Agent].
func (a *ParallelAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// InputKeys implements [types.Agent].
func (a *ParallelAgent) InputKeys() []string {
	return a.base.InputKeys()
}

// OutputKeys implements [types.Agent].
func (a *ParallelAgent) OutputKeys() []string {
	return unionOutputKeys(a.base)
}

// Execute implements [types.Agent].
func (a *ParallelAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	branch := a.Name()
	if ictx.Branch != "" {
		branch = ictx.Branch + "." + a.Name()
	}

	agentRuns := make([]AgentRun, 0, len(a.base.SubAgents()))
	for _, subAgent := range a.base.SubAgents() {
		branchCtx := ictx.WithBranch(branch)
		agentRuns = append(agentRuns, func(ctx context.Context) iter.Seq2[*types.Event, error] {
			return subAgent.Run(ctx, branchCtx)
		})
	}

	return MergeAgentRun(ctx, agentRuns...)
}

// Run implements [types.Agent].
func (a *ParallelAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return a.base.Run(ctx, parentContext)
}

// RootAgent implements [types.Agent].
func (a *ParallelAgent) RootAgent() types.Agent {
	return a.base.RootAgent()
}

// FindAgent implements [types.Agent].
func (a *ParallelAgent) FindAgent(name string) types.Agent {
	return a.base.FindAgent(name)
}

// FindSubAgent implements [types.Agent].
func (a *ParallelAgent) FindSubAgent(name string) types.Agent {
	return a.base.FindSubAgent(name)
}

// AgentRun starts one branch of a [MergeAgentRun].
type AgentRun func(ctx context.Context) iter.Seq2[*types.Event, error]

// eventResult holds an event result from an agent with metadata.
type eventResult struct {
	event   *types.Event
	err     error
	agentID int

	// processed is closed once the consumer returned from yield.
	processed chan struct{}
}

// MergeAgentRun merges the event streams of concurrently running agents.
//
// Each branch blocks after emitting an event until the consumer has processed
// it, so a branch never observes state that its own previous event has not
// committed yet. The first branch error cancels the other branches and is
// yielded as the last value.
func MergeAgentRun(ctx context.Context, agentRuns ...AgentRun) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		if len(agentRuns) == 0 {
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		eventCh := make(chan eventResult)

		for i, agentRun := range agentRuns {
			g.Go(func() error {
				for event, err := range agentRun(gctx) {
					res := eventResult{
						event:     event,
						err:       err,
						agentID:   i,
						processed: make(chan struct{}),
					}
					select {
					case eventCh <- res:
					case <-gctx.Done():
						return gctx.Err()
					}

					select {
					case <-res.processed:
					case <-gctx.Done():
						return gctx.Err()
					}

					if err != nil {
						return err
					}
				}
				return nil
			})
		}

		// Close eventCh when all agents complete
		go func() {
			_ = g.Wait()
			close(eventCh)
		}()

		for result := range eventCh {
			ok := yield(result.event, result.err)
			close(result.processed)
			if !ok || result.err != nil {
				cancel()
				for range eventCh {
					// drain until every branch observed the cancellation
				}
				return
			}
		}
	}
}
