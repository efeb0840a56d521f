// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package mockmodel provides a scripted [types.Model] for tests.
package mockmodel

import (
	"context"
	"errors"
	"regexp"
	"sync"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

// ErrExhausted is returned when every scripted response has been consumed.
var ErrExhausted = errors.New("mockmodel: no scripted responses left")

// ResponderFunc computes the response for a request.
type ResponderFunc func(ctx context.Context, request *types.LLMRequest) (*types.LLMResponse, error)

// Model is a [types.Model] that replays scripted responses and records every request.
type Model struct {
	name string
	fn   ResponderFunc

	mu        sync.Mutex
	responses []*types.LLMResponse
	requests  []*types.LLMRequest
}

var _ types.Model = (*Model)(nil)

// New returns a Model replaying responses in order.
func New(name string, responses ...*types.LLMResponse) *Model {
	return &Model{
		name:      name,
		responses: responses,
	}
}

// NewFunc returns a Model delegating every call to fn.
func NewFunc(name string, fn ResponderFunc) *Model {
	return &Model{
		name: name,
		fn:   fn,
	}
}

// Name implements [types.Model].
func (m *Model) Name() string {
	return m.name
}

// GenerateContent implements [types.Model].
func (m *Model) GenerateContent(ctx context.Context, request *types.LLMRequest) (*types.LLMResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, request)
	fn := m.fn
	var next *types.LLMResponse
	if fn == nil && len(m.responses) > 0 {
		next = m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(ctx, request)
	}
	if next == nil {
		return nil, ErrExhausted
	}

	return next, nil
}

// Requests returns the requests received so far.
func (m *Model) Requests() []*types.LLMRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*types.LLMRequest(nil), m.requests...)
}

// Text returns a model response carrying text.
func Text(text string) *types.LLMResponse {
	return types.NewTextResponse(text)
}

// FunctionCall returns a model response asking for one function call.
func FunctionCall(id, name string, args map[string]any) *types.LLMResponse {
	part := genai.NewPartFromFunctionCall(name, args)
	part.FunctionCall.ID = id

	return &types.LLMResponse{
		Content: genai.NewContentFromParts([]*genai.Part{part}, genai.RoleModel),
	}
}

var agentNameRe = regexp.MustCompile(`Your internal name is "([^"]+)"`)

// AgentName returns the name of the agent that built request, taken from its identity instruction.
func AgentName(request *types.LLMRequest) string {
	m := agentNameRe.FindStringSubmatch(request.SystemInstructionText())
	if len(m) != 2 {
		return ""
	}
	return m[1]
}

// LastFunctionResponse returns the most recent function response in the request contents, if any.
func LastFunctionResponse(request *types.LLMRequest) *genai.FunctionResponse {
	for i := len(request.Contents) - 1; i >= 0; i-- {
		content := request.Contents[i]
		if content == nil {
			continue
		}
		for _, part := range content.Parts {
			if part.FunctionResponse != nil {
				return part.FunctionResponse
			}
		}
	}
	return nil
}
