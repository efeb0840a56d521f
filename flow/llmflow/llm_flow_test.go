// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/go-a2a/arovi/agent"
	"github.com/go-a2a/arovi/internal/mockmodel"
	"github.com/go-a2a/arovi/session"
	"github.com/go-a2a/arovi/types"
)

// recordingTool is a tool whose behavior is given by fn.
type recordingTool struct {
	name  string
	fn    func(args map[string]any, toolCtx *types.ToolContext) (any, error)
	calls []map[string]any
}

var _ types.Tool = (*recordingTool)(nil)

func (t *recordingTool) Name() string        { return t.name }
func (t *recordingTool) Description() string { return "test tool " + t.name }

func (t *recordingTool) GetDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.name,
		Description: t.Description(),
		Parameters:  &genai.Schema{Type: genai.TypeObject},
	}
}

func (t *recordingTool) Run(_ context.Context, args map[string]any, toolCtx *types.ToolContext) (any, error) {
	t.calls = append(t.calls, args)
	return t.fn(args, toolCtx)
}

func (t *recordingTool) ProcessLLMRequest(_ context.Context, _ *types.ToolContext, request *types.LLMRequest) error {
	request.AppendTools(t)
	return nil
}

type result struct {
	state  map[string]any
	events []*types.Event
	err    error
}

func runAgent(t *testing.T, a types.Agent, runConfig *types.RunConfig) result {
	t.Helper()
	ctx := t.Context()

	svc := session.NewInMemoryService()
	ses, err := svc.CreateSession(ctx, "arovi", "test", "", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	opts := []types.InvocationContextOption{
		types.WithUserContent(genai.NewContentFromText("go", genai.RoleUser)),
	}
	if runConfig != nil {
		opts = append(opts, types.WithRunConfig(runConfig))
	}

	var res result
	for event, err := range a.Run(ctx, types.NewInvocationContext(a, ses, svc, opts...)) {
		if err != nil {
			res.err = err
			break
		}
		if _, err := svc.AppendEvent(ctx, ses, event); err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
		res.events = append(res.events, event)
	}
	res.state = ses.State().ToMap()

	return res
}

func newAgent(t *testing.T, m types.Model, tools ...types.Tool) *agent.LLMAgent {
	t.Helper()

	a, err := agent.NewLLMAgent(t.Context(), "classify",
		agent.WithModel(m),
		agent.WithInstruction("Tag the items."),
		agent.WithTools(tools...),
		agent.WithOutputKey("tagged_items_raw"),
		agent.WithOutputKeys("tool_note"),
	)
	if err != nil {
		t.Fatalf("NewLLMAgent: %v", err)
	}
	return a
}

func TestLLMFlow_FunctionCallRoundTrip(t *testing.T) {
	echo := &recordingTool{
		name: "filter_and_dedupe_tool",
		fn: func(args map[string]any, toolCtx *types.ToolContext) (any, error) {
			toolCtx.State().Set("tool_note", "called")
			return map[string]any{"filtered_count": 1}, nil
		},
	}
	m := mockmodel.New("mock",
		mockmodel.FunctionCall("", "filter_and_dedupe_tool", map[string]any{"items": []any{}}),
		mockmodel.Text(`{"items": []}`),
	)

	res := runAgent(t, newAgent(t, m, echo), nil)
	if res.err != nil {
		t.Fatalf("Run: %v", res.err)
	}

	if len(echo.calls) != 1 {
		t.Fatalf("tool called %d times, want 1", len(echo.calls))
	}
	want := map[string]any{"tagged_items_raw": `{"items": []}`, "tool_note": "called"}
	if diff := cmp.Diff(want, res.state); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	requests := m.Requests()
	if len(requests) != 2 {
		t.Fatalf("model called %d times, want 2", len(requests))
	}
	resp := mockmodel.LastFunctionResponse(requests[1])
	if resp == nil {
		t.Fatal("second request carries no function response")
	}
	if got := resp.Response["filtered_count"]; got != 1 {
		t.Errorf("function response = %v", resp.Response)
	}
	call := res.events[0].GetFunctionCalls()[0]
	if call.ID == "" || resp.ID != call.ID {
		t.Errorf("function response ID %q does not match call ID %q", resp.ID, call.ID)
	}
	if decl := requests[0].Config.Tools[0].FunctionDeclarations[0]; decl.Name != "filter_and_dedupe_tool" {
		t.Errorf("declared tool %s", decl.Name)
	}
}

func TestLLMFlow_ToolFailuresAreReportedToTheModel(t *testing.T) {
	failing := &recordingTool{
		name: "load_web_page",
		fn: func(map[string]any, *types.ToolContext) (any, error) {
			return nil, errors.New("fetch failed")
		},
	}

	tests := map[string]struct {
		call      string
		wantError string
	}{
		"tool error": {
			call:      "load_web_page",
			wantError: "fetch failed",
		},
		"unknown tool": {
			call:      "delete_everything",
			wantError: "tool delete_everything is not available",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := mockmodel.New("mock",
				mockmodel.FunctionCall("c1", tt.call, nil),
				mockmodel.Text("recovered"),
			)

			res := runAgent(t, newAgent(t, m, failing), nil)
			if res.err != nil {
				t.Fatalf("Run: %v", res.err)
			}

			resp := mockmodel.LastFunctionResponse(m.Requests()[1])
			if got := resp.Response["error"]; got != tt.wantError {
				t.Errorf("error response = %v, want %q", got, tt.wantError)
			}
			if got := res.state["tagged_items_raw"]; got != "recovered" {
				t.Errorf("tagged_items_raw = %v, want recovered", got)
			}
		})
	}
}

func TestLLMFlow_SkipSummarization(t *testing.T) {
	pipeline := &recordingTool{
		name: "run_arovi_pipeline",
		fn: func(_ map[string]any, toolCtx *types.ToolContext) (any, error) {
			toolCtx.Actions().SkipSummarization = true
			return "ok", nil
		},
	}
	m := mockmodel.New("mock", mockmodel.FunctionCall("c1", "run_arovi_pipeline", nil))

	res := runAgent(t, newAgent(t, m, pipeline), nil)
	if res.err != nil {
		t.Fatalf("Run: %v", res.err)
	}
	if got := len(m.Requests()); got != 1 {
		t.Errorf("model called %d times, want 1", got)
	}
	last := res.events[len(res.events)-1]
	if !last.IsFinalResponse() || len(last.GetFunctionResponses()) != 1 {
		t.Errorf("last event is not the final function response")
	}
	if _, ok := res.state["tagged_items_raw"]; ok {
		t.Errorf("output key written from a function response")
	}
}

func TestLLMFlow_OracleTimeout(t *testing.T) {
	slow := mockmodel.NewFunc("slow", func(ctx context.Context, _ *types.LLMRequest) (*types.LLMResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	t.Run("fallback", func(t *testing.T) {
		res := runAgent(t, newAgent(t, slow), &types.RunConfig{
			MaxLLMCalls:       10,
			OracleTimeout:     10 * time.Millisecond,
			FallbackOnTimeout: true,
		})
		if res.err != nil {
			t.Fatalf("Run: %v", res.err)
		}
		if got, ok := res.state["tagged_items_raw"]; !ok || got != "" {
			t.Errorf("tagged_items_raw = %v, %v; want empty output", got, ok)
		}
	})

	t.Run("fail", func(t *testing.T) {
		res := runAgent(t, newAgent(t, slow), &types.RunConfig{
			MaxLLMCalls:   10,
			OracleTimeout: 10 * time.Millisecond,
		})
		if !errors.Is(res.err, context.DeadlineExceeded) {
			t.Fatalf("Run error = %v, want DeadlineExceeded", res.err)
		}
	})
}

func TestLLMFlow_MaxLLMCalls(t *testing.T) {
	loopy := &recordingTool{
		name: "again",
		fn: func(map[string]any, *types.ToolContext) (any, error) {
			return "again", nil
		},
	}
	m := mockmodel.NewFunc("loopy", func(context.Context, *types.LLMRequest) (*types.LLMResponse, error) {
		return mockmodel.FunctionCall("", "again", nil), nil
	})

	res := runAgent(t, newAgent(t, m, loopy), &types.RunConfig{MaxLLMCalls: 3})

	var limitErr types.LLMCallsLimitExceededError
	if !errors.As(res.err, &limitErr) {
		t.Fatalf("Run error = %v, want LLMCallsLimitExceededError", res.err)
	}
	if got := len(m.Requests()); got != 3 {
		t.Errorf("model called %d times, want 3", got)
	}
}
