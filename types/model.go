// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
)

// Model represents a generative AI model (the oracle).
type Model interface {
	// Name returns the name of the LLM model.
	//
	// e.g. gemini-2.0-flash or claude-3-7-sonnet-latest.
	Name() string

	// GenerateContent generates one content from the given contents and tools.
	GenerateContent(ctx context.Context, request *LLMRequest) (*LLMResponse, error)
}
