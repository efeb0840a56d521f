// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-a2a/arovi/types"
)

func TestInjectState(t *testing.T) {
	state := types.NewState(map[string]any{
		"city":        "Chicago",
		"app:region":  "midwest",
		"trend_notes": map[string]any{"key_trends": []any{"flu down"}},
		"empty":       nil,
	}, nil)

	tests := map[string]struct {
		template string
		keys     []string
		want     string
	}{
		"plain key": {
			template: "Briefing for {city}.",
			want:     "Briefing for Chicago.",
		},
		"optional key": {
			template: "State: {state?}.",
			want:     "State: .",
		},
		"absent key renders empty": {
			template: "[{missing}]",
			want:     "[]",
		},
		"nil value renders empty": {
			template: "[{empty}]",
			want:     "[]",
		},
		"prefixed key": {
			template: "{app:region}",
			want:     "midwest",
		},
		"structured value as JSON": {
			template: "{trend_notes}",
			want:     `{"key_trends":["flu down"]}`,
		},
		"json example kept verbatim": {
			template: `Emit {"items": []} now.`,
			want:     `Emit {"items": []} now.`,
		},
		"unknown prefix kept verbatim": {
			template: "{foo:bar}",
			want:     "{foo:bar}",
		},
		"scoped view hides other keys": {
			template: "{city} {app:region}",
			keys:     []string{"city"},
			want:     "Chicago ",
		},
		"double braces": {
			template: "{{city}}",
			want:     "Chicago",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := InjectState(tt.template, types.NewStateView(state, tt.keys...))
			if got != tt.want {
				t.Errorf("InjectState(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestIsValidStateName(t *testing.T) {
	tests := map[string]bool{
		"city":        true,
		"_private":    true,
		"item2":       true,
		"2items":      false,
		"app:limit":   true,
		"user:tone":   true,
		"temp:x":      true,
		"other:x":     false,
		"app:":        false,
		"a:b:c":       false,
		`"items": []`: false,
		"":            false,
	}

	for name, want := range tests {
		if got := isValidStateName(name); got != want {
			t.Errorf("isValidStateName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestToFunctionResponse(t *testing.T) {
	type result struct {
		Count int `json:"count"`
	}

	tests := map[string]struct {
		in   any
		want map[string]any
	}{
		"nil": {
			in:   nil,
			want: map[string]any{},
		},
		"map": {
			in:   map[string]any{"ok": true},
			want: map[string]any{"ok": true},
		},
		"string": {
			in:   "done",
			want: map[string]any{"result": "done"},
		},
		"struct": {
			in:   result{Count: 2},
			want: map[string]any{"count": float64(2)},
		},
		"slice": {
			in:   []string{"a"},
			want: map[string]any{"result": []any{"a"}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := toFunctionResponse(tt.in)
			if err != nil {
				t.Fatalf("toFunctionResponse: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("toFunctionResponse(%v) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}
