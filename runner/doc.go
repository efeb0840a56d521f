// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner runs a root agent for one request at a time.
//
// [Runner.Run] creates a fresh session per request, so every pipeline run owns
// an isolated state, and returns the session as stored once the run is over:
//
//	r := runner.New("arovi", root, session.NewInMemoryService())
//	ses, err := r.Run(ctx, "user-1", "Generate a calm, public-health daily briefing for Chicago")
//	if err != nil {
//		return err
//	}
//	draft, _ := ses.State().Get("briefing_draft")
package runner
