// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package briefing builds the Arovi daily public-health briefing pipeline.
//
// The workflow runs four regional ingestion agents in parallel, merges and
// deduplicates their items, tags them, summarizes trends, drafts a Markdown
// briefing, runs a bounded review loop over the draft and finally computes
// run metrics. Stages exchange data only through session state; the keys are
// declared in keys.go.
//
// Text produced by the model crosses every stage boundary through a parser
// stage that never fails: unusable output is replaced by the empty value of
// the expected type.
//
//	root, err := briefing.NewRootAgent(ctx, briefing.Options{ModelName: "gemini-2.5-flash"})
//	if err != nil {
//		return err
//	}
//	r := runner.New("arovi", root, session.NewInMemoryService())
//	res, err := briefing.Generate(ctx, r, "user", briefing.Request{City: "Austin", State: "Texas"})
package briefing
