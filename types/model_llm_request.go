// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"strings"

	"google.golang.org/genai"
)

// LLMRequest represents a LLM request class that allows passing in tools, output schema and system.
type LLMRequest struct {
	// The model name.
	Model string `json:"model,omitempty"`

	// The contents to send to the model.
	Contents []*genai.Content `json:"contents"`

	// Additional config for the generate content request.
	//
	// tools in generate_content_config should not be set.
	Config *genai.GenerateContentConfig `json:"config,omitempty"`

	// The tools map, keyed by function name. The flow executes only the
	// function calls the model asks for through this registry.
	ToolMap map[string]Tool `json:"-"`
}

type LLMRequestOption func(*LLMRequest)

// WithModelName sets the model name.
func WithModelName(name string) LLMRequestOption {
	return func(r *LLMRequest) {
		r.Model = name
	}
}

// WithGenerationConfig sets the [*genai.GenerateContentConfig] for the [LLMRequestOption].
func WithGenerationConfig(config *genai.GenerateContentConfig) LLMRequestOption {
	return func(r *LLMRequest) {
		r.Config = config
	}
}

// NewLLMRequest creates a new [LLMRequest].
func NewLLMRequest(contents []*genai.Content, opts ...LLMRequestOption) *LLMRequest {
	r := &LLMRequest{
		Contents: contents,
		ToolMap:  make(map[string]Tool),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// AppendInstructions appends instructions to the system instruction.
func (r *LLMRequest) AppendInstructions(instructions ...string) {
	if len(instructions) == 0 {
		return
	}
	if r.Config == nil {
		r.Config = &genai.GenerateContentConfig{}
	}

	text := strings.Join(instructions, "\n\n")
	if r.Config.SystemInstruction == nil {
		r.Config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: text},
			},
		}
		return
	}

	r.Config.SystemInstruction.Parts = append(r.Config.SystemInstruction.Parts, &genai.Part{
		Text: "\n\n" + text,
	})
}

// SystemInstructionText returns the text of the system instruction.
func (r *LLMRequest) SystemInstructionText() string {
	if r.Config == nil || r.Config.SystemInstruction == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range r.Config.SystemInstruction.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// AppendTools adds function declarations of tools to the request and registers them in the tool map.
func (r *LLMRequest) AppendTools(tools ...Tool) *LLMRequest {
	if r.Config == nil {
		r.Config = &genai.GenerateContentConfig{}
	}
	if r.ToolMap == nil {
		r.ToolMap = make(map[string]Tool)
	}

	var declarations []*genai.FunctionDeclaration
	for _, tool := range tools {
		if decl := tool.GetDeclaration(); decl != nil {
			declarations = append(declarations, decl)
		}
		r.ToolMap[tool.Name()] = tool
	}
	if len(declarations) == 0 {
		return r
	}

	for _, t := range r.Config.Tools {
		if len(t.FunctionDeclarations) > 0 {
			t.FunctionDeclarations = append(t.FunctionDeclarations, declarations...)
			return r
		}
	}
	r.Config.Tools = append(r.Config.Tools, &genai.Tool{
		FunctionDeclarations: declarations,
	})

	return r
}

// SetOutputSchema configures the expected response format.
func (r *LLMRequest) SetOutputSchema(schema *genai.Schema) *LLMRequest {
	if r.Config == nil {
		r.Config = &genai.GenerateContentConfig{}
	}

	r.Config.ResponseSchema = schema
	r.Config.ResponseMIMEType = "application/json"

	return r
}
