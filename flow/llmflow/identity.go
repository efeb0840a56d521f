// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"

	"github.com/go-a2a/arovi/types"
)

// IdentityRequestProcessor gives the agent identity from the framework.
type IdentityRequestProcessor struct{}

var _ RequestProcessor = (*IdentityRequestProcessor)(nil)

// ProcessRequest implements [RequestProcessor].
func (p *IdentityRequestProcessor) ProcessRequest(_ context.Context, _ *types.InvocationContext, agent Agent, request *types.LLMRequest) error {
	si := `You are an agent. Your internal name is "` + agent.Name() + `".`
	if agent.Description() != "" {
		si += ` The description about you is "` + agent.Description() + `".`
	}
	request.AppendInstructions(si)

	return nil
}
