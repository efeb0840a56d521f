// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package arovi generates calm, non-alarmist daily public-health briefings
// for a city by orchestrating a multi-stage agent workflow.
//
// The workflow itself lives in package briefing, the agent runtime in the
// agent, flow, tool, model, session and runner packages, and the command
// line interface in cmd/arovi.
package arovi

// Version is the version of arovi.
var Version = "v0.1.0"
