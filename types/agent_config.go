// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"log/slog"
)

// Config represents the configuration for an [types.Agent].
type Config struct {
	// The agent's Name.
	//
	// Agent Name must be a Go identifier and unique within the agent tree.
	// Agent Name cannot be "user", since it's reserved for end-user's input.
	Name string

	// Description about the agent's capability.
	//
	// One-line Description is enough and preferred.
	Description string

	// The parent agent of this agent.
	parentAgent Agent

	// The sub-agents of this agent.
	subAgents []Agent

	// State keys read by the agent.
	inputKeys []string

	// State keys written by the agent.
	outputKeys []string

	// callback signature that is invoked before the agent run.
	beforeAgentCallbacks []AgentCallback

	// callback signature that is invoked after the agent run.
	afterAgentCallbacks []AgentCallback

	logger *slog.Logger
}

// Option configures a [Config].
type Option interface {
	apply(*Config)
}

type optionFunc func(*Config)

func (o optionFunc) apply(c *Config) { o(c) }

// WithDescription sets the description for the [Config].
func WithDescription(description string) Option {
	return optionFunc(func(c *Config) {
		c.Description = description
	})
}

// WithSubAgents adds sub-agents for the [Config].
func WithSubAgents(agents ...Agent) Option {
	return optionFunc(func(c *Config) {
		c.subAgents = append(c.subAgents, agents...)
	})
}

// WithInputKeys declares the state keys the agent reads.
func WithInputKeys(keys ...string) Option {
	return optionFunc(func(c *Config) {
		c.inputKeys = append(c.inputKeys, keys...)
	})
}

// WithOutputKeys declares the state keys the agent writes.
func WithOutputKeys(keys ...string) Option {
	return optionFunc(func(c *Config) {
		c.outputKeys = append(c.outputKeys, keys...)
	})
}

// WithBeforeAgentCallbacks adds callbacks run before the agent. The first one
// returning content ends the invocation with that content.
func WithBeforeAgentCallbacks(callbacks ...AgentCallback) Option {
	return optionFunc(func(c *Config) {
		c.beforeAgentCallbacks = append(c.beforeAgentCallbacks, callbacks...)
	})
}

// WithAfterAgentCallbacks adds callbacks run after the agent finished.
func WithAfterAgentCallbacks(callbacks ...AgentCallback) Option {
	return optionFunc(func(c *Config) {
		c.afterAgentCallbacks = append(c.afterAgentCallbacks, callbacks...)
	})
}

// WithLogger sets the logger for the [Config].
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(c *Config) {
		c.logger = logger
	})
}

// NewConfig creates a new agent configuration with the given name.
func NewConfig(name string, opts ...Option) *Config {
	c := &Config{
		Name:   name,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt.apply(c)
	}

	return c
}

// Logger returns the logger of the agent.
func (c *Config) Logger() *slog.Logger {
	return c.logger
}
