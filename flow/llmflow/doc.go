// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package llmflow implements the request/response loop of a generative agent.
//
// Each step builds a [types.LLMRequest] through a chain of [RequestProcessor]s,
// lets every tool of the agent contribute to it, calls the oracle and yields
// the model response as an event:
//
//	┌─────────────┐    ┌──────────────────┐    ┌─────────────┐    ┌───────────────────┐
//	│   Request   │───▶│ Request          │───▶│   Oracle    │───▶│ Function calls    │
//	│             │    │ Processors       │    │    Call     │    │ (tool registry)   │
//	└─────────────┘    └──────────────────┘    └─────────────┘    └───────────────────┘
//
// When the response asks for function calls, the flow runs the matching tools
// from the request's tool map, yields the merged function response event and
// starts another step. The loop ends at the first final response, or after a
// function response that skips summarization.
//
// # Request Processors
//
// [NewLLMFlow] installs, in order:
//
//   - [BasicRequestProcessor]: model name, generation config, output schema
//   - [IdentityRequestProcessor]: the agent's name and description
//   - [InstructionsRequestProcessor]: the instruction with state injected
//   - [ContentsRequestProcessor]: the user content of the invocation
//
// # State Injection
//
// Instructions may reference session state with {key} placeholders. An
// optional placeholder is written {key?}. Missing keys render as the empty
// string; anything between braces that is not a valid state name, such as a
// JSON example, is kept verbatim:
//
//	Tagged items: {tagged_items}
//	Revision notes: {risk_report?}
//
// Values that are not strings are rendered as JSON.
package llmflow
