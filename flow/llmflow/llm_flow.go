// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

// LLMFlow calls the oracle in a loop until a final response is generated.
type LLMFlow struct {
	RequestProcessors []RequestProcessor
	Logger            *slog.Logger
}

// NewLLMFlow creates a new [LLMFlow] with the default request processors.
func NewLLMFlow() *LLMFlow {
	return &LLMFlow{
		RequestProcessors: []RequestProcessor{
			&BasicRequestProcessor{},
			&IdentityRequestProcessor{},
			&InstructionsRequestProcessor{},
			&ContentsRequestProcessor{},
		},
		Logger: slog.Default().With("flow", "LLMFlow"),
	}
}

// WithLogger sets the logger of the flow.
func (f *LLMFlow) WithLogger(logger *slog.Logger) *LLMFlow {
	f.Logger = logger.With("flow", "LLMFlow")
	return f
}

// Run runs the flow for agent.
//
// Function calls and their responses are kept as the step history, so every
// following step of the same run sees them.
func (f *LLMFlow) Run(ctx context.Context, ictx *types.InvocationContext, agent Agent) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		var history []*genai.Content
		for {
			var lastEvent *types.Event
			for event, err := range f.runOneStep(ctx, ictx, agent, &history) {
				if err != nil {
					yield(nil, err)
					return
				}
				lastEvent = event
				if !yield(event, nil) {
					return
				}
			}
			if lastEvent == nil || lastEvent.IsFinalResponse() || ictx.IsEndInvocation() {
				return
			}
		}
	}
}

// runOneStep runs one step, which means one oracle call.
func (f *LLMFlow) runOneStep(ctx context.Context, ictx *types.InvocationContext, agent Agent, history *[]*genai.Content) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		request, err := f.preprocess(ctx, ictx, agent)
		if err != nil {
			yield(nil, err)
			return
		}
		request.Contents = append(request.Contents, *history...)

		modelResponseEvent := types.NewEvent().
			WithInvocationID(ictx.InvocationID).
			WithAuthor(agent.Name()).
			WithBranch(ictx.Branch)

		response, err := f.callLLM(ctx, ictx, agent, request, modelResponseEvent)
		if err != nil {
			yield(nil, err)
			return
		}
		if response.ErrorCode != "" {
			f.Logger.WarnContext(ctx, "oracle returned no content",
				slog.String("agent", agent.Name()),
				slog.String("error_code", response.ErrorCode),
				slog.String("error_message", response.ErrorMessage),
			)
		}

		modelResponseEvent.WithLLMResponse(response)
		PopulateClientFunctionCallID(modelResponseEvent)
		if !yield(modelResponseEvent, nil) {
			return
		}

		if len(modelResponseEvent.GetFunctionCalls()) == 0 {
			return
		}

		funcResponseEvent, err := HandleFunctionCalls(ctx, ictx, agent, modelResponseEvent, request.ToolMap)
		if err != nil {
			yield(nil, err)
			return
		}
		if funcResponseEvent == nil {
			return
		}
		*history = append(*history, modelResponseEvent.Content, funcResponseEvent.Content)

		yield(funcResponseEvent, nil)
	}
}

// preprocess builds the request of one step.
func (f *LLMFlow) preprocess(ctx context.Context, ictx *types.InvocationContext, agent Agent) (*types.LLMRequest, error) {
	request := types.NewLLMRequest(nil)
	for _, processor := range f.RequestProcessors {
		if err := processor.ProcessRequest(ctx, ictx, agent, request); err != nil {
			return nil, err
		}
	}

	for _, tool := range agent.CanonicalTools() {
		toolCtx := types.NewToolContext(ictx)
		if err := tool.ProcessLLMRequest(ctx, toolCtx, request); err != nil {
			return nil, fmt.Errorf("process request for tool %s: %w", tool.Name(), err)
		}
	}

	return request, nil
}

// callLLM runs the model callbacks around one oracle call.
func (f *LLMFlow) callLLM(ctx context.Context, ictx *types.InvocationContext, agent Agent, request *types.LLMRequest, modelResponseEvent *types.Event) (*types.LLMResponse, error) {
	cctx := types.NewCallbackContext(ictx)
	modelResponseEvent.WithActions(cctx.EventActions())

	for i, callback := range agent.BeforeModelCallbacks() {
		response, err := callback(cctx, request)
		if err != nil {
			return nil, fmt.Errorf("BeforeModelCallbacks[%d]: %w", i, err)
		}
		if response != nil {
			return response, nil
		}
	}

	response, err := f.generate(ctx, ictx, agent, request)
	if err != nil {
		return nil, err
	}

	for i, callback := range agent.AfterModelCallbacks() {
		altered, err := callback(cctx, response)
		if err != nil {
			return nil, fmt.Errorf("AfterModelCallbacks[%d]: %w", i, err)
		}
		if altered != nil {
			response = altered
			break
		}
	}

	return response, nil
}

// generate calls the oracle, enforcing the call limit and the per-call timeout.
func (f *LLMFlow) generate(ctx context.Context, ictx *types.InvocationContext, agent Agent, request *types.LLMRequest) (*types.LLMResponse, error) {
	if err := ictx.IncrementLLMCallCount(); err != nil {
		return nil, err
	}

	model, err := agent.CanonicalModel(ctx)
	if err != nil {
		return nil, err
	}

	runConfig := ictx.RunConfig
	if runConfig == nil {
		runConfig = types.NewRunConfig()
	}

	callCtx := ctx
	if runConfig.OracleTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, runConfig.OracleTimeout)
		defer cancel()
	}

	response, err := model.GenerateContent(callCtx, request)
	switch {
	case err == nil && response != nil:
		return response, nil

	case err == nil:
		return nil, fmt.Errorf("agent %s: model %s returned no response", agent.Name(), model.Name())

	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && runConfig.FallbackOnTimeout:
		f.Logger.WarnContext(ctx, "oracle call timed out, falling back to an empty output",
			slog.String("agent", agent.Name()),
			slog.Duration("timeout", runConfig.OracleTimeout),
		)
		return types.NewTextResponse(""), nil

	default:
		return nil, fmt.Errorf("agent %s: model %s: %w", agent.Name(), model.Name(), err)
	}
}
