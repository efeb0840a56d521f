// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"
)

// MaxRiskIterationsLimit is the largest accepted pipeline.max_risk_iterations.
const MaxRiskIterationsLimit = 10

// ValidationError is a single invalid configuration value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is every validation failure of a [Config].
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted log.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the accepted log.format values.
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// Validate checks c and returns every problem found.
//
// A missing credential for the configured model is a validation error, so
// that the process fails at start instead of at the first model call.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if strings.TrimSpace(c.AppName) == "" {
		add("app_name", c.AppName, "must not be empty")
	}
	if strings.TrimSpace(c.Model) == "" {
		add("model", c.Model, "must not be empty")
	}
	if c.APIKey() == "" {
		field, env := "google_api_key", "GOOGLE_API_KEY"
		if c.IsClaude() {
			field, env = "anthropic_api_key", "ANTHROPIC_API_KEY"
		}
		add(field, "", fmt.Sprintf("required for model %s (set %s)", c.Model, env))
	}

	if c.Pipeline.MinRelevanceLen < 1 {
		add("pipeline.min_relevance_len", c.Pipeline.MinRelevanceLen, "must be at least 1")
	}
	if n := c.Pipeline.MaxRiskIterations; n < 1 || n > MaxRiskIterationsLimit {
		add("pipeline.max_risk_iterations", n, fmt.Sprintf("must be between 1 and %d", MaxRiskIterationsLimit))
	}
	if c.Pipeline.OracleTimeout < 0 {
		add("pipeline.oracle_timeout", c.Pipeline.OracleTimeout, "must not be negative")
	}
	if c.Pipeline.MaxLLMCalls < 0 {
		add("pipeline.max_llm_calls", c.Pipeline.MaxLLMCalls, "must not be negative")
	}

	switch c.Session.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Session.SQLitePath == "" {
			add("session.sqlite_path", c.Session.SQLitePath, "required for the sqlite backend")
		}
	default:
		add("session.backend", c.Session.Backend, "must be memory or sqlite")
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		add("log.level", c.Log.Level, "must be one of "+strings.Join(ValidLogLevels(), ", "))
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Log.Format)) {
		add("log.format", c.Log.Format, "must be one of "+strings.Join(ValidLogFormats(), ", "))
	}

	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		add("schedule.cron", c.Schedule.Cron, err.Error())
	}
	for i, req := range c.Schedule.Requests {
		if err := req.Validate(); err != nil {
			add(fmt.Sprintf("schedule.requests[%d]", i), req.City, "city is required")
		}
	}

	return errs
}
