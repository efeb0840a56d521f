// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"strings"

	"google.golang.org/genai"
)

// LLMResponse represents a response from a language model.
type LLMResponse struct {
	// Content is the content of the response.
	Content *genai.Content

	// GroundingMetadata is the grounding metadata of the response.
	GroundingMetadata *genai.GroundingMetadata

	// Partial indicates whether the text content is part of an unfinished text stream.
	Partial bool

	// ErrorCode is the error code if the response is an error. Code varies by model.
	ErrorCode string

	// ErrorMessage is the error message if the response is an error.
	ErrorMessage string

	// CustomMetadata is the custom metadata of the LLMResponse.
	CustomMetadata map[string]any
}

// NewLLMResponse creates an [LLMResponse] from a [*genai.GenerateContentResponse].
func NewLLMResponse(resp *genai.GenerateContentResponse) *LLMResponse {
	response := &LLMResponse{}

	if resp == nil {
		response.ErrorCode = "UNKNOWN_ERROR"
		response.ErrorMessage = "Generate content response is nil."
		return response
	}

	switch {
	case len(resp.Candidates) > 0:
		candidate := resp.Candidates[0]
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			response.Content = candidate.Content
			response.GroundingMetadata = candidate.GroundingMetadata
		} else {
			response.ErrorCode = string(candidate.FinishReason)
			response.ErrorMessage = candidate.FinishMessage
		}

	case resp.PromptFeedback != nil:
		response.ErrorCode = string(resp.PromptFeedback.BlockReason)
		if response.ErrorCode == "" {
			response.ErrorCode = "UNKNOWN_BLOCK"
		}
		response.ErrorMessage = resp.PromptFeedback.BlockReasonMessage

	default:
		response.ErrorCode = "UNKNOWN_ERROR"
		response.ErrorMessage = "Unknown error in generate content response."
	}

	return response
}

// NewTextResponse returns a model [LLMResponse] carrying text.
func NewTextResponse(text string) *LLMResponse {
	return &LLMResponse{
		Content: genai.NewContentFromText(text, genai.RoleModel),
	}
}

// Text returns the concatenated text parts of the response content.
func (r *LLMResponse) Text() string {
	if r == nil || r.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range r.Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
