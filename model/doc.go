// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package model provides the oracle implementations behind [types.Model].
//
// Requests and responses are expressed with google.golang.org/genai content
// types. [Gemini] sends them as is; [Claude] converts them to and from the
// Anthropic Messages API, including function calls and function responses.
//
// # Model Registry
//
// Models are resolved by name using regex pattern matching:
//
//	gemini-2.5-flash
//	projects/my-project/locations/us-central1/publishers/google/models/gemini-2.5-pro
//	claude-sonnet-4-5
//
// A name that matches no pattern is an error:
//
//	m, err := model.NewLLM(ctx, apiKey, "gemini-2.5-flash")
//	if err != nil {
//		return err
//	}
//
// Additional providers can be registered:
//
//	model.RegisterLLMType(
//		[]string{`my-model-.*`},
//		func(ctx context.Context, apiKey, modelName string) (types.Model, error) {
//			return NewMyModel(ctx, apiKey, modelName)
//		},
//	)
//
// # Environment Variables
//
// An empty API key falls back to:
//
//	GOOGLE_API_KEY        - Google AI API key
//	ANTHROPIC_API_KEY     - Anthropic API key
package model
