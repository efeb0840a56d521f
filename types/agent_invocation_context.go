// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// LLMCallsLimitExceededError represents error thrown when the number of LLM calls exceed the limit.
type LLMCallsLimitExceededError string

// NewLLMCallsLimitExceededError returns the new [LLMCallsLimitExceededError] error.
func NewLLMCallsLimitExceededError(msg string, a ...any) error {
	return LLMCallsLimitExceededError(fmt.Sprintf(msg, a...))
}

// Error returns a string representation of the LLMCallsLimitExceededError.
func (e LLMCallsLimitExceededError) Error() string {
	return string(e)
}

// InvocationCostManager represents a container to keep track of the cost of invocation.
//
// It is shared by every agent of one invocation, including concurrently
// running branches.
type InvocationCostManager struct {
	// A counter that keeps track of number of llm calls made.
	llmCalls atomic.Int64
}

// IncrementAndEnforceLLMCallsLimit increments llmCalls and enforces the limit.
func (mgr *InvocationCostManager) IncrementAndEnforceLLMCallsLimit(runConfig *RunConfig) error {
	calls := mgr.llmCalls.Add(1)
	if runConfig != nil && runConfig.MaxLLMCalls > 0 && calls > int64(runConfig.MaxLLMCalls) {
		return NewLLMCallsLimitExceededError("max number of llm calls limit of %d exceeded", runConfig.MaxLLMCalls)
	}
	return nil
}

// LLMCalls returns the number of llm calls made so far.
func (mgr *InvocationCostManager) LLMCalls() int {
	return int(mgr.llmCalls.Load())
}

// InvocationContext represents the data of a single invocation of an agent tree.
//
// An invocation starts with a user message and ends when the root agent
// finishes. Every agent run derives its own copy of the context; the session,
// the cost manager and the end-of-invocation flag are shared by all copies.
//
//	┌─────────────────────── invocation ──────────────────────────┐
//	┌──────────── llm_agent_call_1 ────────────┐ ┌─ agent_call_2 ─┐
//	┌──── step_1 ────────┐ ┌───── step_2 ──────┐
//	[call_llm] [call_tool] [call_llm] [final text]
type InvocationContext struct {
	SessionService SessionService

	// InvocationID is the id of this invocation context. Readonly.
	InvocationID string

	// The branch of the invocation context.
	//
	// The format is like agent_1.agent_2.agent_3, where agent_1 is the parent of
	// agent_2, and agent_2 is the parent of agent_3.
	Branch string

	// The current agent of this invocation context. Readonly.
	Agent Agent

	// The user content that started this invocation. Readonly.
	UserContent *genai.Content

	// The current session of this invocation context. Readonly.
	Session Session

	// Configurations for agents under this invocation.
	RunConfig *RunConfig

	// A container to keep track of different kinds of costs incurred as a part
	// of this invocation.
	invocationCostManager *InvocationCostManager

	// endInvocation is set by callbacks or tools to terminate this invocation.
	endInvocation *atomic.Bool
}

// InvocationContextOption is a function that modifies the [InvocationContext].
type InvocationContextOption func(*InvocationContext)

// WithInvocationID sets the invocation id.
func WithInvocationID(id string) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.InvocationID = id
	}
}

// WithBranch sets the branch.
func WithBranch(branch string) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.Branch = branch
	}
}

// WithUserContent sets the user content that started the invocation.
func WithUserContent(content *genai.Content) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.UserContent = content
	}
}

// WithRunConfig sets the [RunConfig].
func WithRunConfig(runConfig *RunConfig) InvocationContextOption {
	return func(ictx *InvocationContext) {
		ictx.RunConfig = runConfig
	}
}

// NewInvocationContext creates a new [InvocationContext].
func NewInvocationContext(agent Agent, session Session, sessionSvc SessionService, opts ...InvocationContextOption) *InvocationContext {
	ictx := &InvocationContext{
		Agent:                 agent,
		Session:               session,
		SessionService:        sessionSvc,
		InvocationID:          NewInvocationContextID(),
		RunConfig:             NewRunConfig(),
		invocationCostManager: &InvocationCostManager{},
		endInvocation:         new(atomic.Bool),
	}
	for _, opt := range opts {
		opt(ictx)
	}

	return ictx
}

// clone returns a shallow copy sharing the session, cost manager and end flag.
func (ictx *InvocationContext) clone() *InvocationContext {
	c := *ictx
	if c.invocationCostManager == nil {
		c.invocationCostManager = &InvocationCostManager{}
	}
	if c.endInvocation == nil {
		c.endInvocation = new(atomic.Bool)
	}
	return &c
}

// WithBranch returns a copy of ictx with the given branch.
func (ictx *InvocationContext) WithBranch(branch string) *InvocationContext {
	c := ictx.clone()
	c.Branch = branch
	return c
}

// IncrementLLMCallCount tracks number of llm calls made.
func (ictx *InvocationContext) IncrementLLMCallCount() error {
	if ictx.invocationCostManager == nil {
		ictx.invocationCostManager = &InvocationCostManager{}
	}
	return ictx.invocationCostManager.IncrementAndEnforceLLMCallsLimit(ictx.RunConfig)
}

// LLMCalls returns the number of llm calls made in this invocation.
func (ictx *InvocationContext) LLMCalls() int {
	if ictx.invocationCostManager == nil {
		return 0
	}
	return ictx.invocationCostManager.LLMCalls()
}

// SetEndInvocation ends this invocation.
func (ictx *InvocationContext) SetEndInvocation() {
	if ictx.endInvocation == nil {
		ictx.endInvocation = new(atomic.Bool)
	}
	ictx.endInvocation.Store(true)
}

// IsEndInvocation reports whether the invocation was ended by a callback or tool.
func (ictx *InvocationContext) IsEndInvocation() bool {
	return ictx.endInvocation != nil && ictx.endInvocation.Load()
}

func (ictx *InvocationContext) AppName() string {
	return ictx.Session.AppName()
}

func (ictx *InvocationContext) UserID() string {
	return ictx.Session.UserID()
}

// NewInvocationContextID generates a new invocation context ID.
func NewInvocationContextID() string {
	return `e-` + uuid.NewString()
}
