// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package flow groups the flows that drive generative agents.
//
// A flow turns one run of a generative agent into a sequence of oracle calls:
// it builds each request from the agent configuration and the session state,
// executes the function calls the oracle asks for and stops at the final
// response. See the llmflow subpackage for the implementation.
package flow
