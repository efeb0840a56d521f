// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"fmt"

	deepcopy "github.com/tiendc/go-deepcopy"
	"google.golang.org/genai"

	"github.com/go-a2a/arovi/types"
)

// BasicRequestProcessor sets the model name, the generation config and the output schema.
type BasicRequestProcessor struct{}

var _ RequestProcessor = (*BasicRequestProcessor)(nil)

// ProcessRequest implements [RequestProcessor].
func (p *BasicRequestProcessor) ProcessRequest(ctx context.Context, ictx *types.InvocationContext, agent Agent, request *types.LLMRequest) error {
	model, err := agent.CanonicalModel(ctx)
	if err != nil {
		return err
	}
	request.Model = model.Name()

	// tools and instructions are appended per request, so the agent's config must not be shared.
	config := &genai.GenerateContentConfig{}
	if agentConfig := agent.GenerateContentConfig(); agentConfig != nil {
		if err := deepcopy.Copy(config, agentConfig); err != nil {
			return fmt.Errorf("copy generate content config of %s: %w", agent.Name(), err)
		}
	}
	request.Config = config

	if schema := agent.OutputSchema(); schema != nil {
		request.SetOutputSchema(schema)
	}

	return nil
}
