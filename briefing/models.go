// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package briefing

import (
	"strings"
)

// Region labels of a [NewsItem].
const (
	RegionGlobal   = "global"
	RegionNational = "national"
	RegionState    = "state"
	RegionCity     = "city"

	// RegionUnknown buckets items with a missing or unrecognized region in metrics.
	RegionUnknown = "unknown"
)

// Topic labels of a [NewsItem].
const (
	TopicInfectiousDisease = "infectious_disease"
	TopicEnvironment       = "environment"
	TopicMentalHealth      = "mental_health"
	TopicHealthSystems     = "health_systems"
	TopicInjuryPrevention  = "injury_prevention"
	TopicOther             = "other"
)

// Sentiment labels of a [NewsItem].
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// NewsItem is one ingested or classified public-health news item.
type NewsItem struct {
	Region                string `json:"region"`
	Title                 string `json:"title"`
	Source                string `json:"source"`
	URL                   string `json:"url"`
	PublishedDate         string `json:"published_date"` // may be empty or "unknown"
	Summary               string `json:"summary"`
	Topic                 string `json:"topic"`
	Sentiment             string `json:"sentiment"`
	PublicHealthRelevance string `json:"public_health_relevance"`
}

// NewsItemList is the envelope the oracle emits news items in.
type NewsItemList struct {
	Items []NewsItem `json:"items"`
}

// TrendNotes summarizes the trends, risks and positive developments of a batch of items.
type TrendNotes struct {
	KeyTrends              []string `json:"key_trends"`
	Risks                  []string `json:"risks"`
	PositiveDevelopments   []string `json:"positive_developments"`
	NotesForBriefingWriter string   `json:"notes_for_briefing_writer"`
}

// IssueType classifies a [RiskIssue].
type IssueType string

// Issue types found by the safety review.
const (
	IssuePolitical        IssueType = "political"
	IssueSpeculative      IssueType = "speculative"
	IssueSensational      IssueType = "sensational"
	IssueUnsupportedClaim IssueType = "unsupported_claim"
)

// RiskIssue is one problem found in a briefing by the safety review.
type RiskIssue struct {
	Type         IssueType `json:"type"`
	Excerpt      string    `json:"excerpt"`
	SuggestedFix string    `json:"suggested_fix"`
}

// RiskReport is the output of one safety review.
type RiskReport struct {
	IsSafe            bool        `json:"is_safe"`
	Issues            []RiskIssue `json:"issues"`
	HighLevelFeedback string      `json:"high_level_feedback"`
}

// MetricsSummary aggregates the counts of one pipeline run.
type MetricsSummary struct {
	TotalItems       int            `json:"total_items"`
	ItemsByRegion    map[string]int `json:"items_by_region"`
	RiskIssueCount   int            `json:"risk_issue_count"`
	ItemsGlobalCount int            `json:"items_global_count"`
	ItemsUSCount     int            `json:"items_us_count"`
	ItemsStateCount  int            `json:"items_state_count"`
	ItemsCityCount   int            `json:"items_city_count"`
	TaggedItemsCount int            `json:"tagged_items_count"`
}

var regionAliases = map[string]string{
	RegionGlobal:    RegionGlobal,
	"world":         RegionGlobal,
	"international": RegionGlobal,
	RegionNational:  RegionNational,
	"us":            RegionNational,
	"u.s.":          RegionNational,
	"usa":           RegionNational,
	"united states": RegionNational,
	"country":       RegionNational,
	RegionState:     RegionState,
	"region":        RegionState,
	RegionCity:      RegionCity,
	"local":         RegionCity,
}

var topics = map[string]bool{
	TopicInfectiousDisease: true,
	TopicEnvironment:       true,
	TopicMentalHealth:      true,
	TopicHealthSystems:     true,
	TopicInjuryPrevention:  true,
	TopicOther:             true,
}

var sentiments = map[string]bool{
	SentimentPositive: true,
	SentimentNeutral:  true,
	SentimentNegative: true,
}

// label lowercases s and joins its words with underscores.
func label(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

// Normalize trims every field and maps the labels to their canonical values.
//
// Unknown topics become "other" and unknown sentiments "neutral". Unknown
// regions are kept lowercased; metrics count them as "unknown".
func (it NewsItem) Normalize() NewsItem {
	it.Title = strings.TrimSpace(it.Title)
	it.Source = strings.TrimSpace(it.Source)
	it.URL = strings.TrimSpace(it.URL)
	it.PublishedDate = strings.TrimSpace(it.PublishedDate)
	it.Summary = strings.TrimSpace(it.Summary)
	it.PublicHealthRelevance = strings.TrimSpace(it.PublicHealthRelevance)

	region := strings.ToLower(strings.TrimSpace(it.Region))
	if canonical, ok := regionAliases[region]; ok {
		region = canonical
	}
	it.Region = region

	it.Topic = label(it.Topic)
	if !topics[it.Topic] {
		it.Topic = TopicOther
	}
	it.Sentiment = label(it.Sentiment)
	if !sentiments[it.Sentiment] {
		it.Sentiment = SentimentNeutral
	}

	return it
}

// Normalize normalizes every item of l and never returns a nil slice.
func (l NewsItemList) Normalize() NewsItemList {
	items := make([]NewsItem, 0, len(l.Items))
	for _, it := range l.Items {
		items = append(items, it.Normalize())
	}
	return NewsItemList{Items: items}
}

// Normalize canonicalizes the issue types of r and never returns nil slices.
func (r RiskReport) Normalize() RiskReport {
	issues := make([]RiskIssue, 0, len(r.Issues))
	for _, issue := range r.Issues {
		issue.Type = IssueType(label(string(issue.Type)))
		issues = append(issues, issue)
	}
	r.Issues = issues
	return r
}

// Normalize drops blank notes and never returns nil slices.
func (n TrendNotes) Normalize() TrendNotes {
	return TrendNotes{
		KeyTrends:              nonBlank(n.KeyTrends),
		Risks:                  nonBlank(n.Risks),
		PositiveDevelopments:   nonBlank(n.PositiveDevelopments),
		NotesForBriefingWriter: strings.TrimSpace(n.NotesForBriefingWriter),
	}
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RegionBucket returns the metrics bucket of a region label.
func RegionBucket(region string) string {
	switch r := strings.ToLower(strings.TrimSpace(region)); r {
	case RegionGlobal, RegionNational, RegionState, RegionCity:
		return r
	default:
		return RegionUnknown
	}
}
