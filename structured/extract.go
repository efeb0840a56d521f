// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package structured

import (
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

const (
	fence       = "```"
	emptyObject = "{}"
)

// Extract returns the best-effort JSON object substring of text.
//
// When text contains code fences the content between the first and the last
// fence is searched, otherwise the whole text. The result is the inclusive
// substring from the first '{' to the last '}', or "{}" if there is no such
// pair. Braces are not balanced.
//
// Text that is already a valid JSON object is returned trimmed, so Extract is
// idempotent on every result that is valid JSON or free of fences.
func Extract(text string) string {
	s, _ := extract(text)
	return s
}

// extract is [Extract] that also reports whether an object candidate was found.
func extract(text string) (string, bool) {
	// a complete object may carry fences inside its string values
	if trimmed := strings.TrimSpace(text); strings.HasPrefix(trimmed, "{") && jsontext.Value(trimmed).IsValid() {
		return trimmed, true
	}

	candidate := text
	if first := strings.Index(text, fence); first >= 0 {
		if last := strings.LastIndex(text, fence); last > first {
			candidate = text[first+len(fence) : last]
		} else {
			candidate = text[first+len(fence):]
		}
	}

	start := strings.IndexByte(candidate, '{')
	end := strings.LastIndexByte(candidate, '}')
	if start < 0 || end < 0 || start >= end {
		return emptyObject, false
	}

	return candidate[start : end+1], true
}
