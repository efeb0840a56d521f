// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package briefing

// State keys written by the pipeline stages.
const (
	KeyItemsGlobalRaw = "items_global_raw"
	KeyItemsUSRaw     = "items_us_raw"
	KeyItemsStateRaw  = "items_state_raw"
	KeyItemsCityRaw   = "items_city_raw"

	KeyTaggedItemsRaw = "tagged_items_raw"
	KeyTaggedItems    = "tagged_items"

	KeyTrendNotesRaw = "trend_notes_raw"
	KeyTrendNotes    = "trend_notes"

	KeyBriefingDraft   = "briefing_draft"
	KeyRiskReportRaw   = "risk_report_raw"
	KeyRiskReport      = "risk_report"
	KeyBriefingRevised = "briefing_revised"

	KeyMetricsSummary = "metrics_summary"
)

// State keys holding the request parameters.
const (
	KeyRequestCity    = "request_city"
	KeyRequestState   = "request_state"
	KeyRequestCountry = "request_country"
	KeyRequestDate    = "request_date"
)

// requestKeyPrefix prefixes the run_arovi_pipeline arguments in state.
const requestKeyPrefix = "request_"

// RequestKeys are the state keys of the request parameters.
var RequestKeys = []string{KeyRequestCity, KeyRequestState, KeyRequestCountry, KeyRequestDate}

// IngestionKeys are the raw output keys of the regional ingestion stages, in region order.
var IngestionKeys = []string{KeyItemsGlobalRaw, KeyItemsUSRaw, KeyItemsStateRaw, KeyItemsCityRaw}
