// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"google.golang.org/genai"

	"github.com/go-a2a/arovi/flow/llmflow"
	"github.com/go-a2a/arovi/model"
	"github.com/go-a2a/arovi/types"
)

// LLMAgent represents an agent powered by a Large Language Model.
type LLMAgent struct {
	base     *types.BaseAgent
	baseOpts []types.Option

	// The model to use for the agent. An injected model wins over modelName.
	model     types.Model
	modelName string
	modelMu   sync.Mutex

	// Instructions for the LLM model, guiding the agent's behavior.
	//
	// {key} placeholders are replaced with state values before each call.
	instruction string

	// instructionProvider takes precedence over instruction. Its result is
	// used as is, without state injection.
	instructionProvider types.InstructionProvider

	// Tools available to this agent.
	tools []types.Tool

	// generateContentConfig is the additional content generation configurations.
	//
	// NOTE: tools must be configured via [WithTools].
	generateContentConfig *genai.GenerateContentConfig

	// The output schema when agent replies.
	outputSchema *genai.Schema

	// The key in session state to store the final text of the agent.
	outputKey string

	beforeModelCallbacks []types.BeforeModelCallback
	afterModelCallbacks  []types.AfterModelCallback
	beforeToolCallbacks  []types.BeforeToolCallback
	afterToolCallbacks   []types.AfterToolCallback

	flow *llmflow.LLMFlow
}

var (
	_ types.Agent   = (*LLMAgent)(nil)
	_ llmflow.Agent = (*LLMAgent)(nil)
)

// LLMAgentOption configures an [LLMAgent].
type LLMAgentOption func(*LLMAgent)

// WithModel sets the model to use.
func WithModel(model types.Model) LLMAgentOption {
	return func(a *LLMAgent) {
		a.model = model
	}
}

// WithModelName sets the name of the model to use, resolved through the model registry on first use.
func WithModelName(name string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.modelName = name
	}
}

// WithInstruction sets the instruction for the agent.
func WithInstruction(instruction string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.instruction = instruction
	}
}

// WithInstructionProvider sets a function computing the instruction for every call.
func WithInstructionProvider(provider types.InstructionProvider) LLMAgentOption {
	return func(a *LLMAgent) {
		a.instructionProvider = provider
	}
}

// WithDescription sets the description of the agent.
func WithDescription(description string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.baseOpts = append(a.baseOpts, types.WithDescription(description))
	}
}

// WithTools adds tools to the agent.
func WithTools(tools ...types.Tool) LLMAgentOption {
	return func(a *LLMAgent) {
		a.tools = append(a.tools, tools...)
	}
}

// WithGenerateContentConfig sets the [genai.GenerateContentConfig] for the agent.
func WithGenerateContentConfig(config *genai.GenerateContentConfig) LLMAgentOption {
	return func(a *LLMAgent) {
		a.generateContentConfig = config
	}
}

// WithOutputSchema sets the output schema for structured output.
func WithOutputSchema(schema *genai.Schema) LLMAgentOption {
	return func(a *LLMAgent) {
		a.outputSchema = schema
	}
}

// WithOutputKey sets the key where to store the final model text in state.
//
// The key is declared as an output key of the agent.
func WithOutputKey(key string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.outputKey = key
		a.baseOpts = append(a.baseOpts, types.WithOutputKeys(key))
	}
}

// WithInputKeys declares the state keys the instruction may read.
func WithInputKeys(keys ...string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.baseOpts = append(a.baseOpts, types.WithInputKeys(keys...))
	}
}

// WithOutputKeys declares additional state keys the agent may write, typically through its tools.
func WithOutputKeys(keys ...string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.baseOpts = append(a.baseOpts, types.WithOutputKeys(keys...))
	}
}

// WithLogger sets the logger of the agent and of its flow.
func WithLogger(logger *slog.Logger) LLMAgentOption {
	return func(a *LLMAgent) {
		a.baseOpts = append(a.baseOpts, types.WithLogger(logger))
	}
}

// WithBeforeModelCallback adds a callback to run before sending a request to the model.
func WithBeforeModelCallback(callback types.BeforeModelCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.beforeModelCallbacks = append(a.beforeModelCallbacks, callback)
	}
}

// WithAfterModelCallback adds a callback to run after receiving a response from the model.
func WithAfterModelCallback(callback types.AfterModelCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.afterModelCallbacks = append(a.afterModelCallbacks, callback)
	}
}

// WithBeforeToolCallback adds a callback to run before executing a tool.
func WithBeforeToolCallback(callback types.BeforeToolCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.beforeToolCallbacks = append(a.beforeToolCallbacks, callback)
	}
}

// WithAfterToolCallback adds a callback to run after executing a tool.
func WithAfterToolCallback(callback types.AfterToolCallback) LLMAgentOption {
	return func(a *LLMAgent) {
		a.afterToolCallbacks = append(a.afterToolCallbacks, callback)
	}
}

// NewLLMAgent creates a new [LLMAgent] with the given name and options.
func NewLLMAgent(ctx context.Context, name string, opts ...LLMAgentOption) (*LLMAgent, error) {
	a := &LLMAgent{}
	for _, opt := range opts {
		opt(a)
	}
	a.base = types.NewBaseAgent(name, a.baseOpts...)

	if err := a.validateConfig(ctx); err != nil {
		return nil, fmt.Errorf("invalid agent configuration: %w", err)
	}

	a.base.Bind(a)
	a.flow = llmflow.NewLLMFlow().WithLogger(a.base.Logger())

	return a, nil
}

// Name implements [types.Agent].
func (a *LLMAgent) Name() string {
	return a.base.Name()
}

// Description implements [types.Agent].
func (a *LLMAgent) Description() string {
	return a.base.Description()
}

// ParentAgent implements [types.Agent].
func (a *LLMAgent) ParentAgent() types.Agent {
	return a.base.ParentAgent()
}

// SetParentAgent sets the parent agent.
func (a *LLMAgent) SetParentAgent(parent types.Agent) {
	a.base.SetParentAgent(parent)
}

// SubAgents implements [types.Agent].
func (a *LLMAgent) SubAgents() []types.Agent {
	return a.base.SubAgents()
}

// InputKeys implements [types.Agent].
func (a *LLMAgent) InputKeys() []string {
	return a.base.InputKeys()
}

// OutputKeys implements [types.Agent].
func (a *LLMAgent) OutputKeys() []string {
	return a.base.OutputKeys()
}

// Logger returns the logger of the agent.
func (a *LLMAgent) Logger() *slog.Logger {
	return a.base.Logger()
}

// CanonicalModel returns the resolved model of the agent.
func (a *LLMAgent) CanonicalModel(ctx context.Context) (types.Model, error) {
	a.modelMu.Lock()
	defer a.modelMu.Unlock()

	if a.model != nil {
		return a.model, nil
	}
	if a.modelName != "" {
		m, err := model.NewLLM(ctx, "", a.modelName)
		if err != nil {
			return nil, fmt.Errorf("resolve model %s for agent %s: %w", a.modelName, a.Name(), err)
		}
		a.model = m
		return m, nil
	}

	return nil, fmt.Errorf("no model found for agent %s", a.Name())
}

// CanonicalInstruction returns the instruction of the agent and whether state injection must be bypassed.
func (a *LLMAgent) CanonicalInstruction(rctx *types.ReadOnlyContext) (string, bool) {
	if a.instructionProvider != nil {
		return a.instructionProvider(rctx), true
	}
	return a.instruction, false
}

// CanonicalTools returns the tools of the agent.
func (a *LLMAgent) CanonicalTools() []types.Tool {
	return a.tools
}

// GenerateContentConfig returns the [*genai.GenerateContentConfig] for [LLMAgent] agent.
func (a *LLMAgent) GenerateContentConfig() *genai.GenerateContentConfig {
	return a.generateContentConfig
}

// OutputSchema returns the structured output.
func (a *LLMAgent) OutputSchema() *genai.Schema {
	return a.outputSchema
}

// OutputKey returns the key in session state to store the output of the agent.
func (a *LLMAgent) OutputKey() string {
	return a.outputKey
}

// BeforeModelCallbacks returns the callbacks invoked before each model call.
func (a *LLMAgent) BeforeModelCallbacks() []types.BeforeModelCallback {
	return a.beforeModelCallbacks
}

// AfterModelCallbacks returns the callbacks invoked after each model call.
func (a *LLMAgent) AfterModelCallbacks() []types.AfterModelCallback {
	return a.afterModelCallbacks
}

// BeforeToolCallbacks returns the callbacks invoked before each tool call.
func (a *LLMAgent) BeforeToolCallbacks() []types.BeforeToolCallback {
	return a.beforeToolCallbacks
}

// AfterToolCallbacks returns the callbacks invoked after each tool call.
func (a *LLMAgent) AfterToolCallbacks() []types.AfterToolCallback {
	return a.afterToolCallbacks
}

// Execute implements [types.Agent].
func (a *LLMAgent) Execute(ctx context.Context, ictx *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		for event, err := range a.flow.Run(ctx, ictx, a) {
			if err != nil {
				yield(nil, err)
				return
			}
			a.saveOutputToState(event)

			if !yield(event, nil) {
				return
			}
		}
	}
}

// saveOutputToState writes the final text of the agent under its output key.
func (a *LLMAgent) saveOutputToState(event *types.Event) {
	if a.outputKey == "" || event.Author != a.Name() || !event.IsFinalResponse() {
		return
	}
	if len(event.GetFunctionResponses()) > 0 {
		return
	}
	if event.Actions == nil {
		event.Actions = types.NewEventActions()
	}
	if event.Actions.StateDelta == nil {
		event.Actions.StateDelta = make(map[string]any)
	}
	event.Actions.StateDelta[a.outputKey] = event.Text()
}

// Run implements [types.Agent].
func (a *LLMAgent) Run(ctx context.Context, parentContext *types.InvocationContext) iter.Seq2[*types.Event, error] {
	return a.base.Run(ctx, parentContext)
}

// RootAgent implements [types.Agent].
func (a *LLMAgent) RootAgent() types.Agent {
	return a.base.RootAgent()
}

// FindAgent implements [types.Agent].
func (a *LLMAgent) FindAgent(name string) types.Agent {
	return a.base.FindAgent(name)
}

// FindSubAgent implements [types.Agent].
func (a *LLMAgent) FindSubAgent(name string) types.Agent {
	return a.base.FindSubAgent(name)
}

// validateConfig validates the agent configuration.
func (a *LLMAgent) validateConfig(ctx context.Context) error {
	if a.base.Name() == "" {
		return errors.New("agent name must not be empty")
	}
	if a.base.Name() == "user" {
		return errors.New(`agent name "user" is reserved for end-user input`)
	}

	seen := make(map[string]struct{}, len(a.tools))
	for _, tool := range a.tools {
		if _, ok := seen[tool.Name()]; ok {
			return fmt.Errorf("duplicate tool %s", tool.Name())
		}
		seen[tool.Name()] = struct{}{}
	}

	if a.outputSchema != nil && len(a.tools) > 0 {
		a.base.Logger().WarnContext(ctx, "output schema is set together with tools, some models reject this combination",
			slog.String("agent", a.Name()),
		)
	}

	return nil
}
