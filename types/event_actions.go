// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

// EventActions represents the actions attached to an event.
type EventActions struct {
	// SkipSummarization if true, it won't call model to summarize function response.
	//
	// Only used for functionResponse event.
	SkipSummarization bool

	// StateDelta indicates that the event is updating the state with the given delta.
	StateDelta map[string]any

	// Escalate is the agent is escalating to a higher level agent.
	//
	// A loop agent stops iterating when one of its stages escalates.
	Escalate bool
}

// WithStateDelta configures the stateDelta to the [EventActions].
func (ea *EventActions) WithStateDelta(stateDelta map[string]any) *EventActions {
	ea.StateDelta = stateDelta
	return ea
}

// WithEscalate configures the escalate to the [EventActions].
func (ea *EventActions) WithEscalate(escalate bool) *EventActions {
	ea.Escalate = escalate
	return ea
}

// NewEventActions creates a new [EventActions] instance with default values.
func NewEventActions() *EventActions {
	return &EventActions{
		StateDelta: make(map[string]any),
	}
}
