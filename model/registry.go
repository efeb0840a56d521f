// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/go-a2a/arovi/types"
)

// init registers the built-in model types.
func init() {
	RegisterLLMType(
		[]string{
			`claude-.*`,
		},
		func(ctx context.Context, apiKey, modelName string) (types.Model, error) {
			return NewClaude(ctx, apiKey, modelName)
		},
	)

	RegisterLLMType(
		[]string{
			`gemini-.*`,
			`projects\/.*\/locations\/.*\/endpoints\/.*`,
			`projects\/.*\/locations\/.*\/publishers\/google\/models\/gemini-.*`,
		},
		func(ctx context.Context, apiKey, modelName string) (types.Model, error) {
			return NewGemini(ctx, apiKey, modelName)
		},
	)
}

// ModelCreatorFunc is a function type that creates a model instance.
type ModelCreatorFunc func(ctx context.Context, apiKey, modelName string) (types.Model, error)

// modelEntry represents a registry entry with a regex pattern and model creator function.
type modelEntry struct {
	pattern *regexp.Regexp
	creator ModelCreatorFunc
}

// LLMRegistry resolves model names to oracle implementations by regex pattern.
type LLMRegistry struct {
	mu         sync.RWMutex
	registry   []modelEntry
	cacheSize  int
	modelCache map[string]ModelCreatorFunc
}

var (
	defaultRegistry *LLMRegistry
	once            sync.Once
)

// GetRegistry returns the singleton registry instance.
func GetRegistry() *LLMRegistry {
	once.Do(func() {
		defaultRegistry = NewLLMRegistry(32)
	})
	return defaultRegistry
}

// NewLLMRegistry creates a new LLM registry with the specified cache size.
func NewLLMRegistry(cacheSize int) *LLMRegistry {
	return &LLMRegistry{
		cacheSize:  cacheSize,
		modelCache: make(map[string]ModelCreatorFunc),
	}
}

// RegisterLLM registers a model pattern with a creator function.
// If the pattern already exists, it will be updated with the new creator.
func (r *LLMRegistry) RegisterLLM(modelPattern string, creator ModelCreatorFunc) error {
	regex, err := regexp.Compile(`^(?:` + modelPattern + `)$`)
	if err != nil {
		return fmt.Errorf("compile model pattern %q: %w", modelPattern, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// patterns can be re-registered, so drop anything resolved through the old creator.
	clear(r.modelCache)

	for i, entry := range r.registry {
		if entry.pattern.String() == regex.String() {
			r.registry[i].creator = creator
			return nil
		}
	}

	r.registry = append(r.registry, modelEntry{
		pattern: regex,
		creator: creator,
	})

	return nil
}

// ResolveLLM finds the model creator for the given model name.
func (r *LLMRegistry) ResolveLLM(modelName string) (ModelCreatorFunc, error) {
	r.mu.RLock()
	if creator, ok := r.modelCache[modelName]; ok {
		r.mu.RUnlock()
		return creator, nil
	}

	var matchedCreator ModelCreatorFunc
	for _, entry := range r.registry {
		if entry.pattern.MatchString(modelName) {
			matchedCreator = entry.creator
			break
		}
	}
	r.mu.RUnlock()

	if matchedCreator == nil {
		return nil, fmt.Errorf("model %s not found", modelName)
	}

	r.mu.Lock()
	if len(r.modelCache) >= r.cacheSize {
		clear(r.modelCache)
	}
	r.modelCache[modelName] = matchedCreator
	r.mu.Unlock()

	return matchedCreator, nil
}

// NewLLM creates a new LLM instance for the given model name.
func (r *LLMRegistry) NewLLM(ctx context.Context, apiKey, modelName string) (types.Model, error) {
	creator, err := r.ResolveLLM(modelName)
	if err != nil {
		return nil, err
	}

	return creator(ctx, apiKey, modelName)
}

// RegisterLLM is a convenience function to register a model pattern in the default registry.
func RegisterLLM(modelPattern string, creator ModelCreatorFunc) error {
	return GetRegistry().RegisterLLM(modelPattern, creator)
}

// RegisterLLMType registers multiple patterns for a single model creator.
//
// Patterns that fail to compile are logged and skipped.
func RegisterLLMType(patterns []string, creator ModelCreatorFunc) {
	registry := GetRegistry()
	for _, pattern := range patterns {
		if err := registry.RegisterLLM(pattern, creator); err != nil {
			slog.Error("register model pattern", slog.String("pattern", pattern), slog.Any("error", err))
		}
	}
}

// NewLLM is a convenience function to create a new LLM instance.
func NewLLM(ctx context.Context, apiKey, modelName string) (types.Model, error) {
	return GetRegistry().NewLLM(ctx, apiKey, modelName)
}
