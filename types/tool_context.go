// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

// ToolContext represents a context of the tool.
//
// This type provides the context for a tool invocation, including access to
// the invocation context, function call ID and the event actions the tool
// may set (state delta, escalate, skip summarization).
type ToolContext struct {
	*CallbackContext

	functionCallID string
}

// NewToolContext creates a new [ToolContext] with the given invocation context.
func NewToolContext(ictx *InvocationContext) *ToolContext {
	return &ToolContext{
		CallbackContext: NewCallbackContext(ictx),
	}
}

// WithFunctionCallID sets the function call ID for the [*ToolContext].
func (tc *ToolContext) WithFunctionCallID(funcCallID string) *ToolContext {
	tc.functionCallID = funcCallID
	return tc
}

// InvocationContext returns the invocation context for the tool context.
func (tc *ToolContext) InvocationContext() *InvocationContext {
	return tc.ReadOnlyContext.InvocationContext
}

// FunctionCallID returns the function call ID for the tool context.
func (tc *ToolContext) FunctionCallID() string {
	return tc.functionCallID
}

// Actions returns the event actions for the tool context.
func (tc *ToolContext) Actions() *EventActions {
	return tc.eventActions
}
