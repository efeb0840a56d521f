// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

func TestSchemaToJSON(t *testing.T) {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"city": {Type: genai.TypeString, Description: "City name"},
			"items": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{"title": {Type: genai.TypeString}}},
			},
			"region": {Type: genai.TypeString, Enum: []string{"global", "city"}},
		},
		Required: []string{"city"},
	}

	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{"type": "string", "description": "City name"},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"title": map[string]any{"type": "string"}},
				},
			},
			"region": map[string]any{"type": "string", "enum": []string{"global", "city"}},
		},
		"required": []string{"city"},
	}

	if diff := cmp.Diff(want, schemaToJSON(schema)); diff != "" {
		t.Errorf("schemaToJSON() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{}, schemaToJSON(nil)); diff != "" {
		t.Errorf("schemaToJSON(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctionDeclarationToToolParam(t *testing.T) {
	decl := &genai.FunctionDeclaration{
		Name:        "filter_and_dedupe_tool",
		Description: "Filters items.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"min_relevance_len": {Type: genai.TypeInteger},
			},
			Required: []string{"min_relevance_len"},
		},
	}

	got, err := functionDeclarationToToolParam(decl)
	if err != nil {
		t.Fatalf("functionDeclarationToToolParam: %v", err)
	}
	if got.OfTool == nil {
		t.Fatal("OfTool is nil")
	}
	if got.OfTool.Name != decl.Name {
		t.Errorf("Name = %q, want %q", got.OfTool.Name, decl.Name)
	}
	if diff := cmp.Diff([]string{"min_relevance_len"}, got.OfTool.InputSchema.Required); diff != "" {
		t.Errorf("Required mismatch (-want +got):\n%s", diff)
	}
	wantProps := map[string]any{"min_relevance_len": map[string]any{"type": "integer"}}
	if diff := cmp.Diff(wantProps, got.OfTool.InputSchema.Properties); diff != "" {
		t.Errorf("Properties mismatch (-want +got):\n%s", diff)
	}

	if _, err := functionDeclarationToToolParam(&genai.FunctionDeclaration{}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestContentToClaudeMessageParam(t *testing.T) {
	tests := map[string]struct {
		content    *genai.Content
		wantOK     bool
		wantRole   anthropic.MessageParamRole
		wantBlocks int
	}{
		"user text": {
			content:    genai.NewContentFromText("hello", genai.RoleUser),
			wantOK:     true,
			wantRole:   anthropic.MessageParamRoleUser,
			wantBlocks: 1,
		},
		"model function call": {
			content: &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{
					genai.NewPartFromText("calling"),
					{FunctionCall: &genai.FunctionCall{ID: "toolu_1", Name: "run_arovi_pipeline", Args: map[string]any{"city": "Chicago"}}},
				},
			},
			wantOK:     true,
			wantRole:   anthropic.MessageParamRoleAssistant,
			wantBlocks: 2,
		},
		"function response": {
			content: &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{
					{FunctionResponse: &genai.FunctionResponse{ID: "toolu_1", Name: "run_arovi_pipeline", Response: map[string]any{"result": "ok"}}},
				},
			},
			wantOK:     true,
			wantRole:   anthropic.MessageParamRoleUser,
			wantBlocks: 1,
		},
		"system": {
			content: genai.NewContentFromText("be calm", genai.Role(RoleSystem)),
		},
		"no supported parts": {
			content: &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{}}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := contentToClaudeMessageParam(tt.content)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", got.Role, tt.wantRole)
			}
			if len(got.Content) != tt.wantBlocks {
				t.Errorf("got %d blocks, want %d", len(got.Content), tt.wantBlocks)
			}
		})
	}
}

func TestPartToClaudeMessageBlock_FunctionResponseError(t *testing.T) {
	part := &genai.Part{
		FunctionResponse: &genai.FunctionResponse{ID: "toolu_2", Name: "load_web_page", Response: map[string]any{"error": "boom"}},
	}
	block, err := partToClaudeMessageBlock(part)
	if err != nil {
		t.Fatalf("partToClaudeMessageBlock: %v", err)
	}
	if block.OfToolResult == nil {
		t.Fatal("expected a tool result block")
	}
	if block.OfToolResult.ToolUseID != "toolu_2" {
		t.Errorf("ToolUseID = %q, want toolu_2", block.OfToolResult.ToolUseID)
	}
	if !block.OfToolResult.IsError.Value {
		t.Error("expected IsError to be set")
	}
}

func TestClaudeMessageToLLMResponse(t *testing.T) {
	message := &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: "Let me run the pipeline."},
			{Type: "tool_use", ID: "toolu_1", Name: "run_arovi_pipeline", Input: json.RawMessage(`{"city":"Chicago"}`)},
			{Type: "thinking", Thinking: "hidden"},
		},
		StopReason: anthropic.StopReasonToolUse,
	}

	got := claudeMessageToLLMResponse(message)
	want := &types.LLMResponse{
		Content: &genai.Content{
			Role: genai.RoleModel,
			Parts: []*genai.Part{
				{Text: "Let me run the pipeline."},
				{FunctionCall: &genai.FunctionCall{ID: "toolu_1", Name: "run_arovi_pipeline", Args: map[string]any{"city": "Chicago"}}},
			},
		},
		CustomMetadata: map[string]any{"finish_reason": string(genai.FinishReasonStop)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("claudeMessageToLLMResponse() mismatch (-want +got):\n%s", diff)
	}

	empty := claudeMessageToLLMResponse(&anthropic.Message{StopReason: anthropic.StopReasonMaxTokens})
	if empty.Content != nil || empty.ErrorCode != string(anthropic.StopReasonMaxTokens) {
		t.Errorf("empty message: got content %v, error code %q", empty.Content, empty.ErrorCode)
	}
}

func TestClaude_MessageParams(t *testing.T) {
	m := &Claude{BaseLLM: NewBaseLLM("claude-sonnet-4-5")}

	temperature := float32(0.2)
	req := types.NewLLMRequest([]*genai.Content{
		genai.NewContentFromText("Generate a briefing", genai.RoleUser),
	}, types.WithGenerationConfig(&genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 1024,
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
			{FunctionDeclarations: []*genai.FunctionDeclaration{{Name: "exit_loop", Description: "Exits the loop."}}},
		},
	}))
	req.AppendInstructions("You are a calm public-health editor.")

	params, err := m.messageParams(req)
	if err != nil {
		t.Fatalf("messageParams: %v", err)
	}
	if params.MaxTokens != 1024 {
		t.Errorf("MaxTokens = %d, want 1024", params.MaxTokens)
	}
	if len(params.System) != 1 || params.System[0].Text != "You are a calm public-health editor." {
		t.Errorf("System = %+v", params.System)
	}
	if len(params.Tools) != 1 {
		t.Errorf("got %d tools, want 1", len(params.Tools))
	}
	if len(params.Messages) != 1 {
		t.Errorf("got %d messages, want 1", len(params.Messages))
	}
}
