// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tools_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/go-a2a/arovi/agent"
	"github.com/go-a2a/arovi/session"
	"github.com/go-a2a/arovi/tool/tools"
	"github.com/go-a2a/arovi/types"
)

func newToolContext(t *testing.T, state map[string]any) *types.ToolContext {
	t.Helper()

	svc := session.NewInMemoryService()
	ses, err := svc.CreateSession(t.Context(), "arovi", "test", "", state)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	root := agent.NewFuncAgent("root", func(context.Context, types.StateView) (*agent.FuncResult, error) { return nil, nil })

	return types.NewToolContext(types.NewInvocationContext(root, ses, svc)).WithFunctionCallID("c1")
}

type searchArgs struct {
	Query  string   `json:"query" description:"Search query"`
	Limit  int      `json:"limit,omitempty"`
	Tags   []string `json:"tags"`
	Cursor *string  `json:"cursor"`
}

func TestNewTypedFunctionTool(t *testing.T) {
	var got searchArgs
	search, err := tools.NewTypedFunctionTool("search", "Search for items",
		func(_ context.Context, args searchArgs, _ *types.ToolContext) (int, error) {
			got = args
			return len(args.Tags), nil
		},
		tools.WithParameterDescription("tags", "Labels to match"),
	)
	if err != nil {
		t.Fatalf("NewTypedFunctionTool: %v", err)
	}

	wantParams := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"query":  {Type: genai.TypeString, Description: "Search query"},
			"limit":  {Type: genai.TypeInteger},
			"tags":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Labels to match"},
			"cursor": {Type: genai.TypeString},
		},
		Required: []string{"query", "tags"},
	}
	decl := search.GetDeclaration()
	if decl.Name != "search" || decl.Description != "Search for items" {
		t.Errorf("declaration = %s: %s", decl.Name, decl.Description)
	}
	if diff := cmp.Diff(wantParams, decl.Parameters); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}

	res, err := search.Run(t.Context(), map[string]any{
		"query": "measles",
		"limit": float64(5),
		"tags":  []any{"city", "state"},
	}, newToolContext(t, nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res != 2 {
		t.Errorf("Run = %v, want 2", res)
	}
	want := searchArgs{Query: "measles", Limit: 5, Tags: []string{"city", "state"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded args mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTypedFunctionTool_NonStructArguments(t *testing.T) {
	_, err := tools.NewTypedFunctionTool("echo", "",
		func(_ context.Context, s string, _ *types.ToolContext) (string, error) { return s, nil })
	if err == nil {
		t.Fatal("expected an error for non-struct arguments")
	}
}

func TestFunctionTool_ProcessLLMRequest(t *testing.T) {
	fn := tools.NewFunctionTool("noop", "does nothing",
		func(context.Context, map[string]any, *types.ToolContext) (any, error) { return nil, nil })
	exit := tools.NewExitLoopTool()

	req := types.NewLLMRequest(nil)
	for _, tool := range []types.Tool{fn, exit} {
		if err := tool.ProcessLLMRequest(t.Context(), nil, req); err != nil {
			t.Fatalf("ProcessLLMRequest: %v", err)
		}
	}

	if len(req.Config.Tools) != 1 {
		t.Fatalf("got %d genai tools, want 1", len(req.Config.Tools))
	}
	var names []string
	for _, decl := range req.Config.Tools[0].FunctionDeclarations {
		names = append(names, decl.Name)
	}
	if diff := cmp.Diff([]string{"noop", "exit_loop"}, names); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
	if req.ToolMap["exit_loop"] != exit {
		t.Error("exit_loop is not registered in the tool map")
	}
}

func TestExitLoop(t *testing.T) {
	toolCtx := newToolContext(t, nil)
	if _, err := tools.NewExitLoopTool().Run(t.Context(), nil, toolCtx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !toolCtx.Actions().Escalate {
		t.Error("exit_loop did not escalate")
	}
}

func TestGoogleSearchTool_ProcessLLMRequest(t *testing.T) {
	tests := map[string]struct {
		model   string
		tools   []*genai.Tool
		want    *genai.Tool
		wantErr bool
	}{
		"gemini 2": {
			model: "gemini-2.5-flash",
			want:  &genai.Tool{GoogleSearch: &genai.GoogleSearch{}},
		},
		"gemini 1 alone": {
			model: "gemini-1.5-pro",
			want:  &genai.Tool{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}},
		},
		"gemini 1 with other tools": {
			model:   "gemini-1.5-pro",
			tools:   []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{{Name: "x"}}}},
			wantErr: true,
		},
		"other oracle": {
			model: "claude-sonnet-4-5",
			want:  &genai.Tool{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := types.NewLLMRequest(nil, types.WithModelName(tt.model),
				types.WithGenerationConfig(&genai.GenerateContentConfig{Tools: tt.tools}))

			err := tools.NewGoogleSearchTool().ProcessLLMRequest(t.Context(), nil, req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ProcessLLMRequest error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got := req.Config.Tools[len(req.Config.Tools)-1]
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tool mismatch (-want +got):\n%s", diff)
			}
			if len(req.ToolMap) != 0 {
				t.Errorf("built-in tool registered in the tool map")
			}
		})
	}
}

func TestURLContextTool_ProcessLLMRequest(t *testing.T) {
	req := types.NewLLMRequest(nil, types.WithModelName("gemini-2.5-flash"))
	if err := tools.NewURLContextTool().ProcessLLMRequest(t.Context(), nil, req); err != nil {
		t.Fatalf("ProcessLLMRequest: %v", err)
	}
	if diff := cmp.Diff([]*genai.Tool{{URLContext: &genai.URLContext{}}}, req.Config.Tools); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}

	old := types.NewLLMRequest(nil, types.WithModelName("gemini-1.5-pro"))
	if err := tools.NewURLContextTool().ProcessLLMRequest(t.Context(), nil, old); err == nil {
		t.Error("expected an error for Gemini 1.x")
	}
}

func TestWebPageTool_LoadWebPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/report", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><head><title>Home</title><script>var tracking = "one two three four";</script></head>
<body>
  <nav>Menu</nav>
  <h1>Weekly report</h1>
  <p>Flu activity declined across the region this week.</p>
  <p>Call <b>311</b> today.</p>
</body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tests := map[string]struct {
		path string
		want string
	}{
		"readable lines only": {
			path: "/report",
			want: "Flu activity declined across the region this week.",
		},
		"fetch failure": {
			path: "/missing",
			want: "Failed to fetch url: " + srv.URL + "/missing",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			webPage := tools.NewWebPageTool(srv.Client())
			got, err := webPage.Run(t.Context(), map[string]any{"url": srv.URL + tt.path}, newToolContext(t, nil))
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got != tt.want {
				t.Errorf("Run = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAgentTool_Run(t *testing.T) {
	ctx := t.Context()

	var seen map[string]any
	workflow := agent.NewSequentialAgent("workflow",
		agent.NewFuncAgent("draft",
			func(_ context.Context, state types.StateView) (*agent.FuncResult, error) {
				seen = state.ToMap()
				return &agent.FuncResult{
					StateDelta: map[string]any{"briefing_draft": "## Global\nfor " + state.String("request_city")},
					Text:       "drafted",
				}, nil
			},
			types.WithInputKeys("request_city", "app:tone"),
			types.WithOutputKeys("briefing_draft"),
		),
	)

	pipeline := tools.NewAgentTool("run_arovi_pipeline", "Runs the briefing pipeline.", workflow,
		tools.WithAgentParameters(&genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"city": {Type: genai.TypeString},
			},
		}, "request_"),
		tools.WithSkipSummarization(true),
	)

	toolCtx := newToolContext(t, map[string]any{"app:tone": "calm", "unrelated": 1})
	res, err := pipeline.Run(ctx, map[string]any{"city": "Chicago", "mayor": "undeclared"}, toolCtx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res != "drafted" {
		t.Errorf("Run = %v, want drafted", res)
	}
	if diff := cmp.Diff(map[string]any{"request_city": "Chicago", "app:tone": "calm"}, seen); diff != "" {
		t.Errorf("child view mismatch (-want +got):\n%s", diff)
	}
	wantDelta := map[string]any{
		"request_city":   "Chicago",
		"briefing_draft": "## Global\nfor Chicago",
	}
	if diff := cmp.Diff(wantDelta, toolCtx.State().GetDelta()); diff != "" {
		t.Errorf("merged delta mismatch (-want +got):\n%s", diff)
	}
	if !toolCtx.Actions().SkipSummarization {
		t.Error("SkipSummarization not set")
	}

	decl := pipeline.GetDeclaration()
	if decl.Name != "run_arovi_pipeline" || decl.Parameters.Properties["city"] == nil {
		t.Errorf("unexpected declaration %+v", decl)
	}
}

func TestAgentTool_DefaultRequestParameter(t *testing.T) {
	echo := agent.NewFuncAgent("echo", func(context.Context, types.StateView) (*agent.FuncResult, error) {
		return &agent.FuncResult{Text: "ok"}, nil
	})
	ask := tools.NewAgentTool("ask", "Ask the helper.", echo)

	want := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{"request": {Type: genai.TypeString}},
		Required:   []string{"request"},
	}
	if diff := cmp.Diff(want, ask.GetDeclaration().Parameters); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}

	toolCtx := newToolContext(t, nil)
	res, err := ask.Run(t.Context(), map[string]any{"request": "hello"}, toolCtx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res != "ok" {
		t.Errorf("Run = %v, want ok", res)
	}
	if toolCtx.State().HasDelta() || toolCtx.Actions().SkipSummarization {
		t.Error("request argument leaked into the caller state or actions")
	}
}
