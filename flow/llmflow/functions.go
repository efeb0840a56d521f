// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

// FunctionCallIDPrefix prefixes the function call IDs generated on the client side.
const FunctionCallIDPrefix = "arovi-"

// GenerateClientFunctionCallID generates a unique function call ID for the client.
func GenerateClientFunctionCallID() string {
	return FunctionCallIDPrefix + uuid.NewString()
}

// PopulateClientFunctionCallID populates the function call ID for each function call in the model response event.
func PopulateClientFunctionCallID(modelResponseEvent *types.Event) {
	for _, funcCall := range modelResponseEvent.GetFunctionCalls() {
		if funcCall.ID == "" {
			funcCall.ID = GenerateClientFunctionCallID()
		}
	}
}

// HandleFunctionCalls runs the function calls of functionCallEvent and returns the merged function response event.
//
// It returns nil when the event has no function calls. Tool failures and
// calls to unknown tools are reported back to the oracle as an "error"
// response; only cancellation of ctx aborts the handling.
func HandleFunctionCalls(ctx context.Context, ictx *types.InvocationContext, agent Agent, functionCallEvent *types.Event, toolsDict map[string]types.Tool) (*types.Event, error) {
	funcCalls := functionCallEvent.GetFunctionCalls()
	if len(funcCalls) == 0 {
		return nil, nil
	}

	logger := loggerOf(agent)
	funcResponseEvents := make([]*types.Event, 0, len(funcCalls))
	for _, funcCall := range funcCalls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		toolCtx := types.NewToolContext(ictx).WithFunctionCallID(funcCall.ID)
		t, ok := toolsDict[funcCall.Name]
		if !ok {
			logger.WarnContext(ctx, "oracle called an unknown tool",
				slog.String("agent", agent.Name()),
				slog.String("tool", funcCall.Name),
			)
			resp := errorResponse(fmt.Errorf("tool %s is not available", funcCall.Name))
			funcResponseEvents = append(funcResponseEvents, buildResponseEvent(funcCall.Name, resp, toolCtx, ictx))
			continue
		}

		funcResponse, err := callToolWithCallbacks(ctx, agent, t, funcCall.Args, toolCtx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.WarnContext(ctx, "tool call failed",
				slog.String("agent", agent.Name()),
				slog.String("tool", t.Name()),
				slog.Any("error", err),
			)
			funcResponse = errorResponse(err)
		}

		funcResponseEvents = append(funcResponseEvents, buildResponseEvent(t.Name(), funcResponse, toolCtx, ictx))
	}

	if len(funcResponseEvents) == 0 {
		return nil, nil
	}

	return mergeParallelFunctionResponseEvents(funcResponseEvents)
}

func callToolWithCallbacks(ctx context.Context, agent Agent, t types.Tool, args map[string]any, toolCtx *types.ToolContext) (map[string]any, error) {
	if args == nil {
		args = map[string]any{}
	}

	var funcResponse map[string]any
	for i, callback := range agent.BeforeToolCallbacks() {
		resp, err := callback(t, args, toolCtx)
		if err != nil {
			return nil, fmt.Errorf("BeforeToolCallbacks[%d]: %w", i, err)
		}
		if resp != nil {
			funcResponse = resp
			break
		}
	}

	if funcResponse == nil {
		result, err := t.Run(ctx, args, toolCtx)
		if err != nil {
			return nil, err
		}
		funcResponse, err = toFunctionResponse(result)
		if err != nil {
			return nil, err
		}
	}

	for i, callback := range agent.AfterToolCallbacks() {
		resp, err := callback(t, args, toolCtx, funcResponse)
		if err != nil {
			return nil, fmt.Errorf("AfterToolCallbacks[%d]: %w", i, err)
		}
		if resp != nil {
			funcResponse = resp
			break
		}
	}

	return funcResponse, nil
}

// toFunctionResponse converts a tool result to the object form a function response requires.
//
// Results that do not encode as a JSON object are wrapped as {"result": value}.
func toFunctionResponse(result any) (map[string]any, error) {
	switch result := result.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return result, nil
	case string, bool, int, int64, float64:
		return map[string]any{"result": result}, nil
	}

	b, err := json.Marshal(result, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("marshal tool result %T: %w", result, err)
	}

	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err == nil {
		return obj, nil
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("unmarshal tool result %T: %w", result, err)
	}
	return map[string]any{"result": v}, nil
}

func errorResponse(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

func buildResponseEvent(toolName string, funcResult map[string]any, toolCtx *types.ToolContext, ictx *types.InvocationContext) *types.Event {
	if funcResult == nil {
		funcResult = map[string]any{}
	}

	partFuncResponse := genai.NewPartFromFunctionResponse(toolName, funcResult)
	partFuncResponse.FunctionResponse.ID = toolCtx.FunctionCallID()

	content := &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{partFuncResponse},
	}

	return types.NewEvent().
		WithInvocationID(ictx.InvocationID).
		WithAuthor(ictx.Agent.Name()).
		WithContent(content).
		WithActions(toolCtx.Actions()).
		WithBranch(ictx.Branch)
}

func mergeParallelFunctionResponseEvents(funcRespEvents []*types.Event) (*types.Event, error) {
	switch len(funcRespEvents) {
	case 0:
		return nil, errors.New("no function response events provided")
	case 1:
		return funcRespEvents[0], nil
	}

	var mergedParts []*genai.Part
	for _, event := range funcRespEvents {
		if event.Content != nil {
			mergedParts = append(mergedParts, event.Content.Parts...)
		}
	}

	// Use the first event as the "base" for common attributes
	baseEvent := funcRespEvents[0]

	mergedActions := types.NewEventActions()
	for _, event := range funcRespEvents {
		if event.Actions == nil {
			continue
		}
		maps.Copy(mergedActions.StateDelta, event.Actions.StateDelta)
		mergedActions.Escalate = mergedActions.Escalate || event.Actions.Escalate
		mergedActions.SkipSummarization = mergedActions.SkipSummarization || event.Actions.SkipSummarization
	}

	mergedEvent := types.NewEvent().
		WithInvocationID(baseEvent.InvocationID).
		WithAuthor(baseEvent.Author).
		WithBranch(baseEvent.Branch).
		WithContent(genai.NewContentFromParts(mergedParts, genai.RoleUser)).
		WithActions(mergedActions)
	mergedEvent.Timestamp = baseEvent.Timestamp

	return mergedEvent, nil
}

type loggerProvider interface {
	Logger() *slog.Logger
}

func loggerOf(agent Agent) *slog.Logger {
	if lp, ok := agent.(loggerProvider); ok && lp.Logger() != nil {
		return lp.Logger()
	}
	return slog.Default()
}
