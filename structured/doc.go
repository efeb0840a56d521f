// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package structured turns free-form model output into typed values.
//
// Model output is never trusted to be well formed. [Extract] pulls the best
// JSON object candidate out of a text blob, [Parse] validates and decodes it,
// and [ParseOr] substitutes a default value when anything goes wrong:
//
//	notes := structured.ParseOr(raw, TrendNotes{}, structured.WithSchema(trendNotesSchema))
package structured
