// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sort"
)

// BaseAgent represents the base agent.
//
// Concrete agents hold a BaseAgent, bind themselves to it with [BaseAgent.Bind]
// and delegate the tree navigation and [Agent.Run] to it.
type BaseAgent struct {
	*Config

	// self is the concrete agent whose Execute is driven by Run.
	self Agent
}

// NewBaseAgent creates a new agent configuration with the given name.
func NewBaseAgent(name string, opts ...Option) *BaseAgent {
	return &BaseAgent{
		Config: NewConfig(name, opts...),
	}
}

// parentSetter is implemented by agents that can be adopted by a parent agent.
type parentSetter interface {
	SetParentAgent(parent Agent)
}

// Bind binds the concrete agent to the base and adopts the sub-agents.
//
// It panics if a sub-agent already has a parent agent.
func (a *BaseAgent) Bind(self Agent) *BaseAgent {
	a.self = self
	for _, subAgent := range a.subAgents {
		if parent := subAgent.ParentAgent(); parent != nil {
			panic(fmt.Errorf("agent %s already has a parent agent, current parent: %s, trying to add: %s", subAgent.Name(), parent.Name(), a.Name()))
		}
		if setter, ok := subAgent.(parentSetter); ok {
			setter.SetParentAgent(self)
		}
	}
	return a
}

// Name implements [Agent].
func (a *BaseAgent) Name() string {
	return a.Config.Name
}

// Description implements [Agent].
func (a *BaseAgent) Description() string {
	return a.Config.Description
}

// ParentAgent implements [Agent].
func (a *BaseAgent) ParentAgent() Agent {
	return a.parentAgent
}

// SetParentAgent sets the parent agent.
func (a *BaseAgent) SetParentAgent(parent Agent) {
	a.parentAgent = parent
}

// SubAgents implements [Agent].
func (a *BaseAgent) SubAgents() []Agent {
	return a.subAgents
}

// InputKeys implements [Agent].
func (a *BaseAgent) InputKeys() []string {
	return a.inputKeys
}

// OutputKeys implements [Agent].
func (a *BaseAgent) OutputKeys() []string {
	return a.outputKeys
}

// Run implements [Agent].
func (a *BaseAgent) Run(ctx context.Context, parentContext *InvocationContext) iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		if a.self == nil {
			yield(nil, NotImplementedError(fmt.Sprintf("agent %s is not bound to a concrete agent", a.Name())))
			return
		}

		ictx := a.createInvocationContext(parentContext)
		beforeEvent, err := a.handleBeforeAgentCallbacks(ctx, ictx)
		if err != nil {
			yield(nil, err)
			return
		}
		if beforeEvent != nil {
			if err := a.checkOutputKeys(beforeEvent); err != nil {
				yield(nil, err)
				return
			}
			if !yield(beforeEvent, nil) {
				return
			}
			if ictx.IsEndInvocation() {
				return
			}
		}

		for event, err := range a.self.Execute(ctx, ictx) {
			if err != nil {
				yield(nil, err)
				return
			}
			if err := a.checkOutputKeys(event); err != nil {
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

		afterEvent, err := a.handleAfterAgentCallback(ctx, ictx)
		if err != nil {
			yield(nil, err)
			return
		}
		if afterEvent != nil {
			if err := a.checkOutputKeys(afterEvent); err != nil {
				yield(nil, err)
				return
			}
			yield(afterEvent, nil)
		}
	}
}

// checkOutputKeys rejects state deltas authored by this agent that touch undeclared keys.
func (a *BaseAgent) checkOutputKeys(event *Event) error {
	if event == nil || event.Author != a.Name() || event.Actions == nil || len(event.Actions.StateDelta) == 0 {
		return nil
	}

	declared := a.self.OutputKeys()
	var undeclared []string
	for key := range event.Actions.StateDelta {
		if !slices.Contains(declared, key) {
			undeclared = append(undeclared, key)
		}
	}
	if len(undeclared) == 0 {
		return nil
	}
	sort.Strings(undeclared)

	return fmt.Errorf("%w: agent %s wrote %v, declared %v", ErrUndeclaredWrite, a.Name(), undeclared, declared)
}

// RootAgent implements [Agent].
func (a *BaseAgent) RootAgent() Agent {
	var rootAgent Agent = a.self
	if rootAgent == nil {
		return nil
	}
	for {
		parentAgent := rootAgent.ParentAgent()
		if parentAgent == nil {
			break
		}
		rootAgent = parentAgent
	}

	return rootAgent
}

// FindAgent implements [Agent].
func (a *BaseAgent) FindAgent(name string) Agent {
	if name == a.Config.Name {
		return a.self
	}
	return a.FindSubAgent(name)
}

// FindSubAgent implements [Agent].
func (a *BaseAgent) FindSubAgent(name string) Agent {
	for _, subAgent := range a.subAgents {
		if result := subAgent.FindAgent(name); result != nil {
			return result
		}
	}
	return nil
}

// createInvocationContext derives the invocation context for this agent.
//
// The parent context is copied so that concurrently running siblings never
// observe each other's agent or branch.
func (a *BaseAgent) createInvocationContext(parentContext *InvocationContext) *InvocationContext {
	ictx := parentContext.clone()
	ictx.Agent = a.self
	if ictx.Branch != "" {
		ictx.Branch += "." + a.Name()
	}
	return ictx
}

// handleBeforeAgentCallbacks runs the beforeAgentCallbacks if it exists.
func (a *BaseAgent) handleBeforeAgentCallbacks(ctx context.Context, ictx *InvocationContext) (*Event, error) {
	if len(a.beforeAgentCallbacks) == 0 {
		return nil, nil
	}

	callbackCtx := NewCallbackContext(ictx)
	for _, callback := range a.beforeAgentCallbacks {
		content, err := callback(callbackCtx)
		if err != nil {
			a.logger.ErrorContext(ctx, "before agent callback error", slog.String("agent", a.Name()), slog.Any("error", err))
			return nil, err
		}
		if content != nil {
			ictx.SetEndInvocation()
			return NewEvent().
				WithInvocationID(ictx.InvocationID).
				WithAuthor(a.Name()).
				WithBranch(ictx.Branch).
				WithContent(content).
				WithActions(callbackCtx.EventActions()), nil
		}
	}

	if callbackCtx.State().HasDelta() {
		return NewEvent().
			WithInvocationID(ictx.InvocationID).
			WithAuthor(a.Name()).
			WithBranch(ictx.Branch).
			WithActions(callbackCtx.EventActions()), nil
	}

	return nil, nil
}

// handleAfterAgentCallback runs the afterAgentCallbacks if it exists.
func (a *BaseAgent) handleAfterAgentCallback(ctx context.Context, ictx *InvocationContext) (*Event, error) {
	if len(a.afterAgentCallbacks) == 0 {
		return nil, nil
	}

	callbackCtx := NewCallbackContext(ictx)
	for _, callback := range a.afterAgentCallbacks {
		content, err := callback(callbackCtx)
		if err != nil {
			a.logger.ErrorContext(ctx, "after agent callback error", slog.String("agent", a.Name()), slog.Any("error", err))
			return nil, err
		}
		if content != nil {
			return NewEvent().
				WithInvocationID(ictx.InvocationID).
				WithAuthor(a.Name()).
				WithBranch(ictx.Branch).
				WithContent(content).
				WithActions(callbackCtx.EventActions()), nil
		}
	}

	if callbackCtx.State().HasDelta() {
		return NewEvent().
			WithInvocationID(ictx.InvocationID).
			WithAuthor(a.Name()).
			WithBranch(ictx.Branch).
			WithActions(callbackCtx.EventActions()), nil
	}

	return nil, nil
}
