// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"time"
)

// DefaultMaxLLMCalls is the default limit on the total number of llm calls.
const DefaultMaxLLMCalls = 500

// RunConfig represents a configs for runtime behavior of agents.
type RunConfig struct {
	// A limit on the total number of llm calls for a given run.
	//
	// Zero or negative disables the limit.
	MaxLLMCalls int

	// OracleTimeout bounds every single model call. Zero means no timeout.
	OracleTimeout time.Duration

	// FallbackOnTimeout makes a generative stage whose model call timed out
	// write an empty output instead of failing the run.
	FallbackOnTimeout bool
}

// NewRunConfig returns the [RunConfig] with default values.
func NewRunConfig() *RunConfig {
	return &RunConfig{
		MaxLLMCalls: DefaultMaxLLMCalls,
	}
}
