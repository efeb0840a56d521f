// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	rand "math/rand/v2"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Event represents an event in a conversation between agents and users.
//
// It is used to store the content of the conversation, as well as the actions
// taken by the agents like function calls and state deltas.
type Event struct {
	*LLMResponse

	// InvocationID is The invocation ID of the event.
	InvocationID string

	// Author is the 'user' or the name of the agent, indicating who appended the event to the session.
	Author string

	// Actions is the Actions taken by the agent
	Actions *EventActions

	// Branch is The Branch of the event.
	//
	// The format is like agent_1.agent_2.agent_3, where agent_1 is the parent of
	// agent_2, and agent_2 is the parent of agent_3.
	Branch string

	// ID is the unique identifier of the event.
	ID string

	// Timestamp is The Timestamp of the event.
	Timestamp time.Time
}

// WithLLMResponse sets the LLMResponse for the event.
func (e *Event) WithLLMResponse(response *LLMResponse) *Event {
	e.LLMResponse = response
	return e
}

// WithContent sets the content of the event's LLMResponse.
func (e *Event) WithContent(content *genai.Content) *Event {
	if e.LLMResponse == nil {
		e.LLMResponse = new(LLMResponse)
	}
	e.LLMResponse.Content = content
	return e
}

// WithInvocationID sets the invocation ID of the event.
func (e *Event) WithInvocationID(id string) *Event {
	e.InvocationID = id
	return e
}

// WithAuthor sets the author of the event.
func (e *Event) WithAuthor(author string) *Event {
	e.Author = author
	return e
}

// WithActions sets the actions of the event.
func (e *Event) WithActions(actions *EventActions) *Event {
	e.Actions = actions
	return e
}

// WithBranch sets the branch of the event.
func (e *Event) WithBranch(branch string) *Event {
	e.Branch = branch
	return e
}

// NewEvent creates a new event with a unique ID and timestamp.
func NewEvent() *Event {
	return &Event{
		ID:        NewEventID(),
		Timestamp: time.Now(),
		Actions:   NewEventActions(),
	}
}

// IsFinalResponse returns whether the event is the final response of the agent.
func (e *Event) IsFinalResponse() bool {
	if e.Actions != nil && e.Actions.SkipSummarization {
		return true
	}
	if e.LLMResponse == nil {
		return true
	}

	return len(e.GetFunctionCalls()) == 0 && len(e.GetFunctionResponses()) == 0 && !e.Partial
}

// GetFunctionCalls returns the function calls in the event.
func (e *Event) GetFunctionCalls() []*genai.FunctionCall {
	var funcCalls []*genai.FunctionCall

	if e.LLMResponse != nil && e.Content != nil {
		for _, part := range e.Content.Parts {
			if part.FunctionCall != nil {
				funcCalls = append(funcCalls, part.FunctionCall)
			}
		}
	}

	return funcCalls
}

// GetFunctionResponses returns the function responses in the event.
func (e *Event) GetFunctionResponses() []*genai.FunctionResponse {
	var funcResponse []*genai.FunctionResponse

	if e.LLMResponse != nil && e.Content != nil {
		for _, part := range e.Content.Parts {
			if part.FunctionResponse != nil {
				funcResponse = append(funcResponse, part.FunctionResponse)
			}
		}
	}

	return funcResponse
}

// Text returns the concatenated text parts of the event content.
func (e *Event) Text() string {
	if e.LLMResponse == nil {
		return ""
	}
	return e.LLMResponse.Text()
}

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewEventID returns a random 8 character event ID.
func NewEventID() string {
	var sb strings.Builder
	sb.Grow(8)
	for range 8 {
		sb.WriteByte(letterBytes[rand.IntN(len(letterBytes))])
	}
	return sb.String()
}
