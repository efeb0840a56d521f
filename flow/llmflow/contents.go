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

// ContentsRequestProcessor starts the request contents with the user content of the invocation.
//
// Outputs of earlier stages reach a generative agent through state injection
// in its instruction, not through the conversation history.
type ContentsRequestProcessor struct{}

var _ RequestProcessor = (*ContentsRequestProcessor)(nil)

// ProcessRequest implements [RequestProcessor].
func (p *ContentsRequestProcessor) ProcessRequest(_ context.Context, ictx *types.InvocationContext, agent Agent, request *types.LLMRequest) error {
	if ictx.UserContent == nil || len(ictx.UserContent.Parts) == 0 {
		return nil
	}

	content := &genai.Content{}
	if err := deepcopy.Copy(content, ictx.UserContent); err != nil {
		return fmt.Errorf("copy user content for %s: %w", agent.Name(), err)
	}
	if content.Role == "" {
		content.Role = genai.RoleUser
	}
	request.Contents = append(request.Contents, content)

	return nil
}
