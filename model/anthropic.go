// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/bytedance/sonic"
	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

const (
	// ClaudeDefaultModel is the default model name for [Claude].
	ClaudeDefaultModel = "claude-sonnet-4-5"

	// claudeDefaultMaxTokens is used when the request does not set MaxOutputTokens.
	claudeDefaultMaxTokens = 8192
)

// Claude represents a Claude Large Language Model.
type Claude struct {
	*BaseLLM

	anthropicClient anthropic.Client
}

var _ types.Model = (*Claude)(nil)

// NewClaude creates a new Claude LLM instance.
//
// An empty apiKey falls back to the [EnvAnthropicAPIKey] environment variable.
func NewClaude(ctx context.Context, apiKey, modelName string) (*Claude, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAnthropicAPIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("either apiKey arg or %q environment variable must be set", EnvAnthropicAPIKey)
		}
	}

	if modelName == "" {
		modelName = ClaudeDefaultModel
	}

	return &Claude{
		BaseLLM:         NewBaseLLM(modelName),
		anthropicClient: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

// GenerateContent implements [types.Model].
func (m *Claude) GenerateContent(ctx context.Context, request *types.LLMRequest) (*types.LLMResponse, error) {
	params, err := m.messageParams(request)
	if err != nil {
		return nil, err
	}

	m.logger.DebugContext(ctx, "sending request to claude",
		slog.String("model", m.modelName),
		slog.Int("messages", len(params.Messages)),
		slog.Int("tools", len(params.Tools)),
	)

	message, err := m.anthropicClient.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	resp := claudeMessageToLLMResponse(message)
	m.logger.DebugContext(ctx, "claude response", buildResponseLog(resp))

	return resp, nil
}

// messageParams converts the request to [anthropic.MessageNewParams].
func (m *Claude) messageParams(request *types.LLMRequest) (anthropic.MessageNewParams, error) {
	contents := ensureUserContent(request.Contents)
	messages := make([]anthropic.MessageParam, 0, len(contents))
	for _, content := range contents {
		msg, ok := contentToClaudeMessageParam(content)
		if !ok {
			continue
		}
		messages = append(messages, msg)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.modelName),
		Messages:  messages,
		MaxTokens: claudeDefaultMaxTokens,
	}

	if system := request.SystemInstructionText(); system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	config := request.Config
	if config == nil {
		return params, nil
	}

	if config.MaxOutputTokens > 0 {
		params.MaxTokens = int64(config.MaxOutputTokens)
	}
	if config.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*config.Temperature))
	}
	if config.TopK != nil {
		params.TopK = anthropic.Int(int64(*config.TopK))
	}
	if config.TopP != nil {
		params.TopP = anthropic.Float(float64(*config.TopP))
	}

	for _, tool := range config.Tools {
		// built-in tools such as GoogleSearch have no Claude counterpart.
		for _, decl := range tool.FunctionDeclarations {
			toolUnion, err := functionDeclarationToToolParam(decl)
			if err != nil {
				return params, err
			}
			params.Tools = append(params.Tools, toolUnion)
		}
	}

	return params, nil
}

func functionDeclarationToToolParam(funcDeclaration *genai.FunctionDeclaration) (toolUnion anthropic.ToolUnionParam, err error) {
	if funcDeclaration == nil || funcDeclaration.Name == "" {
		return toolUnion, errors.New("functionDeclaration name is empty")
	}

	inputSchema := anthropic.ToolInputSchemaParam{
		Properties: map[string]any{},
	}
	if params := funcDeclaration.Parameters; params != nil {
		props := make(map[string]any, len(params.Properties))
		for name, prop := range params.Properties {
			props[name] = schemaToJSON(prop)
		}
		inputSchema.Properties = props
		inputSchema.Required = params.Required
	}

	toolUnion = anthropic.ToolUnionParamOfTool(inputSchema, funcDeclaration.Name)
	toolUnion.OfTool.Description = param.NewOpt(funcDeclaration.Description)

	return toolUnion, nil
}

// schemaToJSON converts a [*genai.Schema] to a JSON Schema document with lowercase type names.
func schemaToJSON(schema *genai.Schema) map[string]any {
	if schema == nil {
		return map[string]any{}
	}

	out := make(map[string]any)
	if schema.Type != "" && schema.Type != genai.TypeUnspecified {
		out["type"] = strings.ToLower(string(schema.Type))
	}
	if schema.Description != "" {
		out["description"] = schema.Description
	}
	if len(schema.Enum) > 0 {
		out["enum"] = slices.Clone(schema.Enum)
	}
	if schema.Format != "" {
		out["format"] = schema.Format
	}
	if schema.Items != nil {
		out["items"] = schemaToJSON(schema.Items)
	}
	if len(schema.Properties) > 0 {
		props := make(map[string]any, len(schema.Properties))
		for name, prop := range schema.Properties {
			props[name] = schemaToJSON(prop)
		}
		out["properties"] = props
	}
	if len(schema.Required) > 0 {
		out["required"] = slices.Clone(schema.Required)
	}
	if len(schema.AnyOf) > 0 {
		anyOf := make([]any, len(schema.AnyOf))
		for i, s := range schema.AnyOf {
			anyOf[i] = schemaToJSON(s)
		}
		out["anyOf"] = anyOf
	}

	return out
}

var genAIRoles = []Role{
	RoleModel,
	RoleAssistant,
}

func asClaudeRole(role string) anthropic.MessageParamRole {
	if slices.Contains(genAIRoles, role) {
		return anthropic.MessageParamRoleAssistant
	}
	return anthropic.MessageParamRoleUser
}

func partToClaudeMessageBlock(part *genai.Part) (anthropic.ContentBlockParamUnion, error) {
	switch {
	case part == nil:
		return anthropic.ContentBlockParamUnion{}, errors.New("nil part")

	case part.Thought:
		return anthropic.ContentBlockParamUnion{}, errors.New("thought parts are not sent back")

	case part.Text != "":
		return anthropic.NewTextBlock(part.Text), nil

	case part.FunctionCall != nil:
		funcCall := part.FunctionCall
		if funcCall.Name == "" {
			return anthropic.ContentBlockParamUnion{}, errors.New("FunctionCall name is empty")
		}
		args := funcCall.Args
		if args == nil {
			args = map[string]any{}
		}
		return anthropic.NewToolUseBlock(funcCall.ID, args, funcCall.Name), nil

	case part.FunctionResponse != nil:
		funcResp := part.FunctionResponse
		content, err := sonic.ConfigStd.MarshalToString(funcResp.Response)
		if err != nil {
			return anthropic.ContentBlockParamUnion{}, fmt.Errorf("marshal function response %s: %w", funcResp.Name, err)
		}
		_, isError := funcResp.Response["error"]
		return anthropic.NewToolResultBlock(funcResp.ID, content, isError), nil
	}

	return anthropic.ContentBlockParamUnion{}, fmt.Errorf("not supported yet %T part type", part)
}

// contentToClaudeMessageParam converts [*genai.Content] to [anthropic.MessageParam].
//
// It reports false when no block of the content can be represented.
func contentToClaudeMessageParam(content *genai.Content) (anthropic.MessageParam, bool) {
	if content == nil || content.Role == RoleSystem {
		return anthropic.MessageParam{}, false
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(content.Parts))
	for _, part := range content.Parts {
		block, err := partToClaudeMessageBlock(part)
		if err != nil {
			continue
		}
		blocks = append(blocks, block)
	}
	if len(blocks) == 0 {
		return anthropic.MessageParam{}, false
	}

	if asClaudeRole(content.Role) == anthropic.MessageParamRoleAssistant {
		return anthropic.NewAssistantMessage(blocks...), true
	}
	return anthropic.NewUserMessage(blocks...), true
}

func claudeContentBlockToPart(block anthropic.ContentBlockUnion) (*genai.Part, error) {
	switch block.Type {
	case "text":
		return genai.NewPartFromText(block.Text), nil

	case "tool_use":
		args := make(map[string]any)
		if len(block.Input) > 0 {
			if err := sonic.ConfigFastest.Unmarshal(block.Input, &args); err != nil {
				return nil, fmt.Errorf("unmarshal ToolUseBlock input: %w", err)
			}
		}
		part := genai.NewPartFromFunctionCall(block.Name, args)
		part.FunctionCall.ID = block.ID
		return part, nil
	}

	return nil, fmt.Errorf("not supported yet converts %q content block", block.Type)
}

func asFinishReason(stopReason anthropic.StopReason) genai.FinishReason {
	switch stopReason {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence, anthropic.StopReasonToolUse:
		return genai.FinishReasonStop
	case anthropic.StopReasonMaxTokens:
		return genai.FinishReasonMaxTokens
	default:
		return genai.FinishReasonUnspecified
	}
}

func claudeMessageToLLMResponse(message *anthropic.Message) *types.LLMResponse {
	parts := make([]*genai.Part, 0, len(message.Content))
	for _, block := range message.Content {
		part, err := claudeContentBlockToPart(block)
		if err != nil {
			continue
		}
		parts = append(parts, part)
	}

	resp := &types.LLMResponse{
		Content: &genai.Content{
			Role:  RoleModel,
			Parts: parts,
		},
		CustomMetadata: map[string]any{
			"finish_reason": string(asFinishReason(message.StopReason)),
		},
	}
	if len(parts) == 0 {
		resp.Content = nil
		resp.ErrorCode = string(message.StopReason)
		resp.ErrorMessage = "claude returned no supported content blocks"
	}

	return resp
}
