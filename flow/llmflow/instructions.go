// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/go-a2a/arovi/types"
)

// InstructionsRequestProcessor appends the agent instruction, with state injected, to the request.
type InstructionsRequestProcessor struct{}

var _ RequestProcessor = (*InstructionsRequestProcessor)(nil)

// ProcessRequest implements [RequestProcessor].
func (p *InstructionsRequestProcessor) ProcessRequest(_ context.Context, ictx *types.InvocationContext, agent Agent, request *types.LLMRequest) error {
	rctx := types.NewReadOnlyContext(ictx)
	si, bypassStateInjection := agent.CanonicalInstruction(rctx)
	if si == "" {
		return nil
	}
	if !bypassStateInjection {
		si = InjectState(si, rctx.State())
	}
	request.AppendInstructions(si)

	return nil
}

var placeholderRe = regexp.MustCompile(`{+[^{}]*}+`)

// InjectState replaces the {key} and {key?} placeholders of template with values from state.
//
// Absent keys render as the empty string. Placeholders whose content is not a
// valid state name are kept as they are.
func InjectState(template string, state types.StateView) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		varName := strings.TrimSpace(strings.TrimRight(strings.TrimLeft(match, "{"), "}"))
		varName = strings.TrimSuffix(varName, "?")
		if !isValidStateName(varName) {
			return match
		}

		return state.String(varName)
	})
}

func isIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// isValidStateName checks if the variable name is a valid state name.
//
// Valid state is either:
//   - Valid identifier
//   - <Valid prefix>:<Valid identifier>
//
// All the others will just return as it is.
func isValidStateName(varName string) bool {
	parts := strings.Split(varName, ":")

	switch len(parts) {
	case 1:
		return isIdentifier(varName)
	case 2:
		prefixes := []string{
			types.AppPrefix,
			types.UserPrefix,
			types.TempPrefix,
		}
		if slices.Contains(prefixes, parts[0]+":") {
			return isIdentifier(parts[1])
		}
	}

	return false
}
