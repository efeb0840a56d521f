// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/pkg/logging"
	"github.com/go-a2a/arovi/session"
	"github.com/go-a2a/arovi/tool"
	"github.com/go-a2a/arovi/types"
)

// AgentOption configures an [AgentTool].
type AgentOption func(*AgentTool)

// WithAgentParameters declares the arguments of the tool.
//
// Each declared argument is written to the child session state, and merged
// back into the caller's state, under stateKeyPrefix followed by the argument
// name. Arguments the schema does not declare are ignored. Without parameters
// the tool takes a single "request" string, which becomes the user content of
// the child run.
func WithAgentParameters(schema *genai.Schema, stateKeyPrefix string) AgentOption {
	return func(t *AgentTool) {
		t.parameters = schema
		t.stateKeyPrefix = stateKeyPrefix
	}
}

// WithSkipSummarization makes the function response of the tool the final
// response of the calling agent.
func WithSkipSummarization(skip bool) AgentOption {
	return func(t *AgentTool) {
		t.skipSummarization = skip
	}
}

// AgentTool is a [types.Tool] that wraps an agent.
//
// The wrapped agent runs in an isolated child session seeded with a copy of
// the caller's state and the tool arguments. The state delta the run produces
// is merged back into the caller's state through the tool context, and the
// text of the last event is returned as the tool result.
type AgentTool struct {
	*tool.Tool

	agent             types.Agent
	parameters        *genai.Schema
	stateKeyPrefix    string
	skipSummarization bool
}

var _ types.Tool = (*AgentTool)(nil)

// NewAgentTool creates a new [AgentTool] named name that runs agent.
func NewAgentTool(name, description string, agent types.Agent, opts ...AgentOption) *AgentTool {
	t := &AgentTool{
		Tool:  tool.NewTool(name, description),
		agent: agent,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Agent returns the wrapped agent.
func (t *AgentTool) Agent() types.Agent {
	return t.agent
}

// GetDeclaration implements [types.Tool].
func (t *AgentTool) GetDeclaration() *genai.FunctionDeclaration {
	params := t.parameters
	if params == nil {
		params = &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"request": {Type: genai.TypeString},
			},
			Required: []string{"request"},
		}
	}

	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  params,
	}
}

// Run implements [types.Tool].
func (t *AgentTool) Run(ctx context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	logger := logging.FromContext(ctx)

	if t.skipSummarization {
		toolCtx.Actions().SkipSummarization = true
	}

	seed := toolCtx.State().ToMap()
	delta := make(map[string]any)
	var userContent *genai.Content
	if t.parameters == nil {
		request, _ := args["request"].(string)
		userContent = genai.NewContentFromText(request, genai.RoleUser)
	} else {
		var sb strings.Builder
		for _, name := range slices.Sorted(maps.Keys(args)) {
			if _, ok := t.parameters.Properties[name]; !ok {
				logger.WarnContext(ctx, "ignoring undeclared argument",
					slog.String("tool", t.Name()),
					slog.String("argument", name),
				)
				continue
			}
			seed[t.stateKeyPrefix+name] = args[name]
			delta[t.stateKeyPrefix+name] = args[name]
			fmt.Fprintf(&sb, "%s: %v\n", name, args[name])
		}
		userContent = genai.NewContentFromText(strings.TrimSpace(sb.String()), genai.RoleUser)
	}

	parent := toolCtx.InvocationContext()
	svc := session.NewInMemoryService().WithLogger(logger)
	child, err := svc.CreateSession(ctx, parent.AppName(), parent.UserID(), "", seed)
	if err != nil {
		return nil, fmt.Errorf("create child session for %s: %w", t.agent.Name(), err)
	}

	ictx := types.NewInvocationContext(t.agent, child, svc,
		types.WithUserContent(userContent),
		types.WithRunConfig(parent.RunConfig),
	)

	var last *types.Event
	for event, err := range t.agent.Run(ctx, ictx) {
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", t.agent.Name(), err)
		}
		if _, err := svc.AppendEvent(ctx, child, event); err != nil {
			return nil, fmt.Errorf("append %s event: %w", t.agent.Name(), err)
		}
		if event.Actions != nil {
			for key, val := range event.Actions.StateDelta {
				if !strings.HasPrefix(key, types.TempPrefix) {
					delta[key] = val
				}
			}
		}
		if event.Text() != "" {
			last = event
		}
	}

	logger.InfoContext(ctx, "agent tool finished",
		slog.String("tool", t.Name()),
		slog.Int("state_keys", len(delta)),
	)
	toolCtx.State().Update(delta)

	if last == nil {
		return "", nil
	}
	return last.Text(), nil
}

// ProcessLLMRequest implements [types.Tool].
func (t *AgentTool) ProcessLLMRequest(ctx context.Context, toolCtx *types.ToolContext, request *types.LLMRequest) error {
	return tool.Declare(request, t)
}
