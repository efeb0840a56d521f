// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package briefing_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-a2a/arovi/briefing"
	"github.com/go-a2a/arovi/types"
)

const longRelevance = "a sufficiently long justification text exceeding forty chars"

func TestFilterAndDedupe(t *testing.T) {
	tests := map[string]struct {
		items []map[string]any
		want  briefing.FilterResult
	}{
		"short relevance dropped before dedupe": {
			items: []map[string]any{
				{"region": "city", "title": "X", "public_health_relevance": "short"},
				{"region": "city", "title": "X", "public_health_relevance": longRelevance},
			},
			want: briefing.FilterResult{
				FilteredItems: []map[string]any{
					{"region": "city", "title": "X", "public_health_relevance": longRelevance},
				},
				FilteredCount: 1,
				OriginalCount: 2,
			},
		},
		"first seen wins case-insensitively": {
			items: []map[string]any{
				{"region": "State", "title": "Flu Clinics Open", "url": "https://a.example", "public_health_relevance": longRelevance},
				{"region": "state", "title": "flu clinics open", "url": "https://b.example", "public_health_relevance": longRelevance},
			},
			want: briefing.FilterResult{
				FilteredItems: []map[string]any{
					{"region": "State", "title": "Flu Clinics Open", "url": "https://a.example", "public_health_relevance": longRelevance},
				},
				FilteredCount: 1,
				OriginalCount: 2,
			},
		},
		"same title in different regions kept": {
			items: []map[string]any{
				{"region": "city", "title": "Heat advisory", "public_health_relevance": longRelevance},
				{"region": "state", "title": "Heat advisory", "public_health_relevance": longRelevance},
			},
			want: briefing.FilterResult{
				FilteredItems: []map[string]any{
					{"region": "city", "title": "Heat advisory", "public_health_relevance": longRelevance},
					{"region": "state", "title": "Heat advisory", "public_health_relevance": longRelevance},
				},
				FilteredCount: 2,
				OriginalCount: 2,
			},
		},
		"blank title or region dropped": {
			items: []map[string]any{
				{"region": "city", "title": "   ", "public_health_relevance": longRelevance},
				{"title": "No region", "public_health_relevance": longRelevance},
				{"region": 7, "title": "Bad region", "public_health_relevance": longRelevance},
			},
			want: briefing.FilterResult{
				FilteredItems: []map[string]any{},
				OriginalCount: 3,
			},
		},
		"empty input": {
			items: nil,
			want:  briefing.FilterResult{FilteredItems: []map[string]any{}},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := briefing.FilterAndDedupe(tt.items, 0)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterAndDedupe mismatch (-want +got):\n%s", diff)
			}
			again := briefing.FilterAndDedupe(got.FilteredItems, 0)
			if diff := cmp.Diff(got.FilteredItems, again.FilteredItems); diff != "" {
				t.Errorf("FilterAndDedupe not idempotent (-first +second):\n%s", diff)
			}
		})
	}
}

func TestFilterAndDedupe_Threshold(t *testing.T) {
	items := []map[string]any{
		{"region": "city", "title": "Short but enough", "public_health_relevance": "ten chars!"},
		{"region": "city", "title": "Too short", "public_health_relevance": "nine char"},
	}
	got := briefing.FilterAndDedupe(items, 10)
	if got.FilteredCount != 1 || field(got.FilteredItems[0], "title") != "Short but enough" {
		t.Errorf("FilterAndDedupe(10) = %+v", got)
	}
}

func field(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return s
}

func TestParsers_UnusableInput(t *testing.T) {
	for name, raw := range map[string]string{
		"no json":      "I could not find any news today.",
		"empty":        "",
		"wrong schema": `{"items": [{"title": 42}]}`,
		"broken":       "```json\n{\"items\": [\n```",
	} {
		t.Run(name, func(t *testing.T) {
			items, err := briefing.ParseNewsItemList(raw)
			if err == nil {
				t.Error("ParseNewsItemList: want error")
			}
			if diff := cmp.Diff(briefing.EmptyNewsItemList(), items); diff != "" {
				t.Errorf("ParseNewsItemList default mismatch (-want +got):\n%s", diff)
			}

			notes, _ := briefing.ParseTrendNotesText(raw)
			if name != "wrong schema" {
				if diff := cmp.Diff(briefing.EmptyTrendNotes(), notes); diff != "" {
					t.Errorf("ParseTrendNotesText default mismatch (-want +got):\n%s", diff)
				}
			}

			report, err := briefing.ParseRiskReportText(raw)
			if err == nil {
				t.Error("ParseRiskReportText: want error")
			}
			if diff := cmp.Diff(briefing.EmptyRiskReport(), report); diff != "" {
				t.Errorf("ParseRiskReportText default mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseNewsItemList(t *testing.T) {
	raw := "Here are the items:\n```json\n" + `{"items": [{
		"region": "USA", "title": " CDC updates guidance ", "source": "CDC", "url": "https://cdc.example",
		"published_date": "unknown", "summary": "Updated guidance.", "topic": "Infectious Disease",
		"sentiment": "hopeful", "public_health_relevance": "Guidance affects clinics nationwide."}]}` + "\n```"

	got, err := briefing.ParseNewsItemList(raw)
	if err != nil {
		t.Fatalf("ParseNewsItemList: %v", err)
	}
	want := briefing.NewsItemList{Items: []briefing.NewsItem{{
		Region:                briefing.RegionNational,
		Title:                 "CDC updates guidance",
		Source:                "CDC",
		URL:                   "https://cdc.example",
		PublishedDate:         "unknown",
		Summary:               "Updated guidance.",
		Topic:                 briefing.TopicInfectiousDisease,
		Sentiment:             briefing.SentimentNeutral,
		PublicHealthRelevance: "Guidance affects clinics nationwide.",
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseNewsItemList mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRiskReportText(t *testing.T) {
	raw := `{"is_safe": false, "issues": [{"type": "Unsupported Claim", "excerpt": "cures everything", "suggested_fix": "remove"}], "high_level_feedback": "tone down"}`

	got, err := briefing.ParseRiskReportText(raw)
	if err != nil {
		t.Fatalf("ParseRiskReportText: %v", err)
	}
	want := briefing.RiskReport{
		Issues: []briefing.RiskIssue{{
			Type:         briefing.IssueUnsupportedClaim,
			Excerpt:      "cures everything",
			SuggestedFix: "remove",
		}},
		HighLevelFeedback: "tone down",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseRiskReportText mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionBucket(t *testing.T) {
	tests := map[string]struct {
		region string
		want   string
	}{
		"global":    {region: "global", want: briefing.RegionGlobal},
		"upper":     {region: " City ", want: briefing.RegionCity},
		"empty":     {region: "", want: briefing.RegionUnknown},
		"unmatched": {region: "county", want: briefing.RegionUnknown},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := briefing.RegionBucket(tt.region); got != tt.want {
				t.Errorf("RegionBucket(%q) = %q, want %q", tt.region, got, tt.want)
			}
		})
	}
}

func TestComputeMetrics(t *testing.T) {
	state := types.NewState(map[string]any{
		briefing.KeyItemsGlobalRaw: `{"items": [{"title": "a"}, {"title": "b"}]}`,
		briefing.KeyItemsUSRaw:     "```json\n{\"items\": [{\"title\": \"c\"}]}\n```",
		briefing.KeyItemsStateRaw:  "no news found",
		briefing.KeyTaggedItemsRaw: `{"items": [{"title": "a"}, {"title": "c"}, {"title": "d"}]}`,
		briefing.KeyTaggedItems: briefing.NewsItemList{Items: []briefing.NewsItem{
			{Region: "global", Title: "a"},
			{Region: "national", Title: "c"},
			{Region: "county", Title: "d"},
		}},
		briefing.KeyRiskReport: map[string]any{"is_safe": false, "issues": []any{map[string]any{"type": "political"}}},
	}, nil)

	got := briefing.ComputeMetrics(types.NewStateView(state))
	want := briefing.MetricsSummary{
		TotalItems:       3,
		ItemsByRegion:    map[string]int{"global": 1, "national": 1, "unknown": 1},
		RiskIssueCount:   1,
		ItemsGlobalCount: 2,
		ItemsUSCount:     1,
		TaggedItemsCount: 3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeMetrics mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeMetrics_EmptyState(t *testing.T) {
	got := briefing.ComputeMetrics(types.NewStateView(types.NewState(nil, nil)))
	want := briefing.MetricsSummary{ItemsByRegion: map[string]int{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeMetrics mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatMetrics(t *testing.T) {
	got := briefing.FormatMetrics(briefing.MetricsSummary{TotalItems: 2, ItemsByRegion: map[string]int{"city": 2}})
	if !strings.HasPrefix(got, "Arovi metrics summary:\n```json\n") {
		t.Errorf("FormatMetrics prefix = %q", got)
	}
	if !strings.Contains(got, `"total_items": 2`) {
		t.Errorf("FormatMetrics = %q, want total_items", got)
	}
}

func TestMetricsFromState(t *testing.T) {
	want := briefing.MetricsSummary{TotalItems: 4, ItemsByRegion: map[string]int{"city": 4}}
	tests := map[string]struct {
		state  map[string]any
		want   briefing.MetricsSummary
		wantOK bool
	}{
		"typed": {
			state:  map[string]any{briefing.KeyMetricsSummary: want},
			want:   want,
			wantOK: true,
		},
		"decoded": {
			state: map[string]any{briefing.KeyMetricsSummary: map[string]any{
				"total_items":     float64(4),
				"items_by_region": map[string]any{"city": float64(4)},
			}},
			want:   want,
			wantOK: true,
		},
		"absent": {
			state: map[string]any{},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := briefing.MetricsFromState(tt.state)
			if ok != tt.wantOK {
				t.Fatalf("MetricsFromState ok = %t, want %t", ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MetricsFromState mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequest_Prompt(t *testing.T) {
	tests := map[string]struct {
		req  briefing.Request
		want string
	}{
		"full": {
			req:  briefing.Request{City: "Austin", State: "Texas", Country: "United States", Date: "2025-11-02"},
			want: "Generate a calm, public-health daily briefing for Austin in the state/region Texas in United States for the date 2025-11-02.",
		},
		"defaults": {
			req:  briefing.Request{City: " Lyon "},
			want: "Generate a calm, public-health daily briefing for Lyon in United States for today.",
		},
		"country": {
			req:  briefing.Request{City: "Lyon", Country: "France"},
			want: "Generate a calm, public-health daily briefing for Lyon in France for today.",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.req.Prompt(); got != tt.want {
				t.Errorf("Prompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequest_Validate(t *testing.T) {
	if err := (briefing.Request{City: "  "}).Validate(); err == nil {
		t.Error("Validate: want error for blank city")
	}
	if err := (briefing.Request{City: "Austin"}).Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestGenerateText_BlankRequest(t *testing.T) {
	// rejected before the runner is touched
	if _, err := briefing.GenerateText(t.Context(), nil, "user-1", " \n"); err == nil {
		t.Error("GenerateText: want error for blank request")
	}
}

func TestFinalBriefing(t *testing.T) {
	tests := map[string]struct {
		state  map[string]any
		want   string
		wantOK bool
	}{
		"revised wins": {
			state:  map[string]any{briefing.KeyBriefingDraft: "draft", briefing.KeyBriefingRevised: "revised"},
			want:   "revised",
			wantOK: true,
		},
		"draft only": {
			state:  map[string]any{briefing.KeyBriefingDraft: "draft"},
			want:   "draft",
			wantOK: true,
		},
		"blank revision falls back": {
			state:  map[string]any{briefing.KeyBriefingDraft: "draft", briefing.KeyBriefingRevised: "  "},
			want:   "draft",
			wantOK: true,
		},
		"nothing": {
			state: map[string]any{briefing.KeyMetricsSummary: briefing.MetricsSummary{}},
			want:  briefing.NoBriefingMessage,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := briefing.FinalBriefing(tt.state)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FinalBriefing = (%q, %t), want (%q, %t)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
