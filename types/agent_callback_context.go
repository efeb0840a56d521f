// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

// CallbackContext provides the context of various callbacks within an agent run.
type CallbackContext struct {
	*ReadOnlyContext

	eventActions *EventActions

	state *State
}

// NewCallbackContext creates a new [*CallbackContext] with the given args.
func NewCallbackContext(ictx *InvocationContext) *CallbackContext {
	return newCallbackContext(ictx, NewEventActions())
}

func newCallbackContext(ictx *InvocationContext, eventActions *EventActions) *CallbackContext {
	return &CallbackContext{
		ReadOnlyContext: NewReadOnlyContext(ictx),
		eventActions:    eventActions,
		state:           NewState(ictx.Session.State().ToMap(), eventActions.StateDelta),
	}
}

// EventActions returns the event actions of the current session.
func (cc *CallbackContext) EventActions() *EventActions {
	return cc.eventActions
}

// State returns the delta-aware state of the current session.
//
// Every Set is recorded in [EventActions.StateDelta] and committed when the
// resulting event is appended to the session.
func (cc *CallbackContext) State() *State {
	return cc.state
}
