// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-a2a/arovi/briefing"
)

func fixedNow() time.Time {
	return time.Date(2025, 11, 2, 6, 0, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	generate := func(context.Context, briefing.Request) (*briefing.Result, error) { return nil, nil }
	valid := Config{
		Cron:      "@daily",
		Requests:  []briefing.Request{{City: "Austin"}},
		OutputDir: t.TempDir(),
		Generate:  generate,
	}

	tests := map[string]struct {
		mutate  func(*Config)
		wantErr bool
	}{
		"valid":       {mutate: func(*Config) {}},
		"five fields": {mutate: func(c *Config) { c.Cron = "0 6 * * *" }},
		"bad cron":    {mutate: func(c *Config) { c.Cron = "at six" }, wantErr: true},
		"no generate": {mutate: func(c *Config) { c.Generate = nil }, wantErr: true},
		"no requests": {mutate: func(c *Config) { c.Requests = nil }, wantErr: true},
		"no output":   {mutate: func(c *Config) { c.OutputDir = "" }, wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestScheduler_Next(t *testing.T) {
	s, err := New(Config{
		Cron:      "CRON_TZ=UTC 0 6 * * *",
		Requests:  []briefing.Request{{City: "Austin"}},
		OutputDir: t.TempDir(),
		Generate:  func(context.Context, briefing.Request) (*briefing.Result, error) { return nil, nil },
	})
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2025, 11, 3, 6, 0, 0, 0, time.UTC)
	if got := s.Next(fixedNow()); !got.Equal(want) {
		t.Errorf("Next = %v, want %v", got, want)
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	boom := errors.New("boom")

	s, err := New(Config{
		Cron: "@daily",
		Requests: []briefing.Request{
			{City: "Austin", State: "Texas"},
			{City: "Lyon", Country: "France", Date: "2025-10-31"},
			{City: "Nowhere"},
		},
		OutputDir:   dir,
		Concurrency: 2,
		Now:         fixedNow,
		Generate: func(_ context.Context, req briefing.Request) (*briefing.Result, error) {
			if req.City == "Nowhere" {
				return nil, boom
			}
			return &briefing.Result{
				Briefing:    "# Briefing for " + req.City,
				HasBriefing: true,
				Metrics:     briefing.MetricsSummary{TotalItems: 2, ItemsByRegion: map[string]int{"city": 2}},
				HasMetrics:  true,
			}, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	outcomes, err := s.RunOnce(t.Context())
	if !errors.Is(err, boom) {
		t.Fatalf("RunOnce error = %v, want boom", err)
	}

	var paths []string
	for _, o := range outcomes {
		paths = append(paths, o.Path)
	}
	want := []string{
		filepath.Join(dir, "2025-11-02-austin-texas.md"),
		filepath.Join(dir, "2025-10-31-lyon.md"),
		"",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(want[0])
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "# Briefing for Austin\n") || !strings.Contains(got, `"total_items": 2`) {
		t.Errorf("briefing file = %q", got)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	ran := make(chan briefing.Request, 1)
	s, err := New(Config{
		Cron:      "@every 1s",
		Requests:  []briefing.Request{{City: "Austin"}},
		OutputDir: t.TempDir(),
		Generate: func(_ context.Context, req briefing.Request) (*briefing.Result, error) {
			select {
			case ran <- req:
			default:
			}
			return &briefing.Result{Briefing: briefing.NoBriefingMessage}, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := t.Context()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start: want error")
	}

	select {
	case req := <-ran:
		if req.City != "Austin" {
			t.Errorf("ran %+v", req)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled run did not happen")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestFileName(t *testing.T) {
	tests := map[string]struct {
		req  briefing.Request
		date string
		want string
	}{
		"city":       {req: briefing.Request{City: "Austin"}, date: "2025-11-02", want: "2025-11-02-austin.md"},
		"with state": {req: briefing.Request{City: "San José", State: "CA"}, date: "2025-11-02", want: "2025-11-02-san-josé-ca.md"},
		"punctuated": {req: briefing.Request{City: "St. Louis"}, date: "2025-11-02", want: "2025-11-02-st-louis.md"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := FileName(tt.req, tt.date); got != tt.want {
				t.Errorf("FileName = %q, want %q", got, tt.want)
			}
		})
	}
}
