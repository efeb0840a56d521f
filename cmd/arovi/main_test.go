// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-a2a/arovi"
	"github.com/go-a2a/arovi/briefing"
	"github.com/go-a2a/arovi/internal/config"
	"github.com/go-a2a/arovi/internal/mockmodel"
	"github.com/go-a2a/arovi/types"
)

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()

	cmd := a.rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GOOGLE_API_KEY", "test-key")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, &app{v: config.New()}, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "arovi "+arovi.Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestBriefCommand_NoBriefing(t *testing.T) {
	isolate(t)

	var gotKey, gotModel string
	a := &app{
		v: config.New(),
		newModel: func(_ context.Context, apiKey, modelName string) (types.Model, error) {
			gotKey, gotModel = apiKey, modelName
			// the root agent answers without running the workflow
			return mockmodel.New(modelName, mockmodel.Text("I can only help with briefings.")), nil
		},
	}

	out, err := execute(t, a, "brief", "--city", "Austin", "--model", "gemini-2.0-flash", "--log-level", "error")
	if err != nil {
		t.Fatalf("brief: %v", err)
	}
	if gotKey != "test-key" || gotModel != "gemini-2.0-flash" {
		t.Errorf("model factory got (%q, %q)", gotKey, gotModel)
	}
	if strings.TrimSpace(out) != briefing.NoBriefingMessage {
		t.Errorf("brief output = %q, want %q", out, briefing.NoBriefingMessage)
	}
}

func TestBriefCommand_FreeFormRequest(t *testing.T) {
	isolate(t)

	m := mockmodel.New("gemini-2.5-flash", mockmodel.Text("Which city?"))
	a := &app{
		v:        config.New(),
		newModel: func(context.Context, string, string) (types.Model, error) { return m, nil },
	}

	const request = "public-health briefing for Chicago, Illinois"
	if _, err := execute(t, a, "brief", request, "--log-level", "error"); err != nil {
		t.Fatalf("brief: %v", err)
	}

	reqs := m.Requests()
	if len(reqs) != 1 {
		t.Fatalf("oracle calls = %d, want 1", len(reqs))
	}
	contents := reqs[0].Contents
	if got := contents[len(contents)-1].Parts[0].Text; got != request {
		t.Errorf("user message = %q, want %q", got, request)
	}
}

func TestBriefCommand_MissingAPIKey(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_API_KEY", "")

	a := &app{v: config.New(), newModel: func(context.Context, string, string) (types.Model, error) {
		t.Fatal("model created without credentials")
		return nil, nil
	}}
	if _, err := execute(t, a, "brief", "--city", "Austin"); err == nil || !strings.Contains(err.Error(), "google_api_key") {
		t.Errorf("brief error = %v, want missing google_api_key", err)
	}
}

func TestBriefCommand_RequiresCity(t *testing.T) {
	isolate(t)

	tests := map[string][]string{
		"no request":       {"brief"},
		"request and city": {"brief", "Chicago briefing", "--city", "Chicago"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := execute(t, &app{v: config.New()}, args...); err == nil {
				t.Errorf("brief %q: want error", args[1:])
			}
		})
	}
}

func TestScheduleCommand_Once(t *testing.T) {
	isolate(t)

	cfgFile := filepath.Join(t.TempDir(), "arovi.yaml")
	outDir := filepath.Join(t.TempDir(), "briefings")
	data := "log:\n  level: error\nschedule:\n  output_dir: " + outDir + "\n  requests:\n    - city: Austin\n      date: \"2025-11-02\"\n"
	if err := os.WriteFile(cfgFile, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	a := &app{
		v: config.New(),
		newModel: func(_ context.Context, _, modelName string) (types.Model, error) {
			return mockmodel.NewFunc(modelName, func(context.Context, *types.LLMRequest) (*types.LLMResponse, error) {
				return mockmodel.Text("Nothing to run."), nil
			}), nil
		},
	}
	out, err := execute(t, a, "schedule", "--once", "--config", cfgFile)
	if err != nil {
		t.Fatalf("schedule --once: %v", err)
	}

	path := filepath.Join(outDir, "2025-11-02-austin.md")
	if !strings.Contains(out, path) {
		t.Errorf("schedule output = %q, want %s", out, path)
	}
	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(written)) != briefing.NoBriefingMessage {
		t.Errorf("written briefing = %q", written)
	}
}

func TestRenderMetrics(t *testing.T) {
	got := renderMetrics(briefing.MetricsSummary{
		TotalItems:     3,
		RiskIssueCount: 1,
		ItemsByRegion:  map[string]int{"state": 1, "city": 2},
	})
	for _, want := range []string{"Arovi metrics", "Tagged items", "city=2 state=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("renderMetrics missing %q:\n%s", want, got)
		}
	}
}
