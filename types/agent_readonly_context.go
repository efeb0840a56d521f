// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"google.golang.org/genai"
)

// ReadOnlyContext provides read-only access to agent context.
type ReadOnlyContext struct {
	InvocationContext *InvocationContext
}

// NewReadOnlyContext creates a new read-only context.
func NewReadOnlyContext(ictx *InvocationContext) *ReadOnlyContext {
	return &ReadOnlyContext{
		InvocationContext: ictx,
	}
}

// UserContent returns the user content that started this invocation. READONLY field.
func (rc *ReadOnlyContext) UserContent() *genai.Content {
	return rc.InvocationContext.UserContent
}

// AgentName returns the name of the agent that is currently running.
func (rc *ReadOnlyContext) AgentName() string {
	return rc.InvocationContext.Agent.Name()
}

// State returns a read-only view of the session state, scoped to the
// current agent's input keys when it declares any.
func (rc *ReadOnlyContext) State() StateView {
	var keys []string
	if agent := rc.InvocationContext.Agent; agent != nil {
		keys = agent.InputKeys()
	}
	return NewStateView(rc.InvocationContext.Session.State(), keys...)
}
