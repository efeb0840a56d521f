// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"maps"
	"slices"
	"sync"

	"github.com/go-json-experiment/json"
)

// Constants for different state key prefixes
const (
	// AppPrefix is the prefix for application state keys
	AppPrefix = "app:"

	// UserPrefix is the prefix for user state keys
	UserPrefix = "user:"

	// TempPrefix is the prefix for temporary state keys
	TempPrefix = "temp:"
)

// State maintains the current value of a state dictionary and any pending deltas
// that haven't been committed yet.
type State struct {
	// mu protects concurrent access to fields
	mu sync.RWMutex

	// value is the current value of the state dict
	value map[string]any

	// delta is the pending change to the current value that hasn't been committed
	delta map[string]any
}

// NewState creates a new State with the given value and delta maps.
func NewState(value, delta map[string]any) *State {
	if value == nil {
		value = make(map[string]any)
	}
	if delta == nil {
		delta = make(map[string]any)
	}

	return &State{
		value: value,
		delta: delta,
	}
}

// Get returns the value for the given key, prioritizing delta values
// over the base values.
func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Check delta first
	if val, ok := s.delta[key]; ok {
		return val, true
	}

	// Then check value
	val, ok := s.value[key]
	return val, ok
}

// Set sets the value for the given key, updating both value and delta.
func (s *State) Set(key string, val any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value[key] = val
	s.delta[key] = val
}

// HasDelta checks if there are any pending changes.
func (s *State) HasDelta() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.delta) > 0
}

// Update updates the state with the given delta, affecting both value and delta.
func (s *State) Update(update map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range update {
		s.value[k] = v
		s.delta[k] = v
	}
}

// ToMap returns a map representation of the state, with delta values
// taking precedence over base values.
func (s *State) ToMap() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]any, len(s.value)+len(s.delta))

	// Copy value first
	maps.Copy(result, s.value)

	// Then overlay delta values
	maps.Copy(result, s.delta)

	return result
}

// GetDelta returns just the pending changes.
func (s *State) GetDelta() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]any, len(s.delta))
	maps.Copy(result, s.delta)

	return result
}

// Commit merges a committed delta into the current value without recording it as pending.
func (s *State) Commit(delta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maps.Copy(s.value, delta)
}

// StateView is a read-only view over a [State].
//
// When the view is scoped to a set of keys, reading any other key reports it as absent.
type StateView struct {
	state *State
	keys  []string
}

// NewStateView returns a [StateView] over state scoped to keys. No keys means unscoped.
func NewStateView(state *State, keys ...string) StateView {
	return StateView{
		state: state,
		keys:  keys,
	}
}

// Get returns the value for the given key.
func (v StateView) Get(key string) (any, bool) {
	if v.state == nil {
		return nil, false
	}
	if len(v.keys) > 0 && !slices.Contains(v.keys, key) {
		return nil, false
	}
	return v.state.Get(key)
}

// String returns the value for key rendered as text.
//
// Strings are returned as is, absent or nil values as the empty string and
// every other value as its JSON encoding.
func (v StateView) String(key string) string {
	val, ok := v.Get(key)
	if !ok || val == nil {
		return ""
	}
	return Stringify(val)
}

// ToMap returns a copy of the visible state.
func (v StateView) ToMap() map[string]any {
	if v.state == nil {
		return map[string]any{}
	}
	all := v.state.ToMap()
	if len(v.keys) == 0 {
		return all
	}
	scoped := make(map[string]any, len(v.keys))
	for _, key := range v.keys {
		if val, ok := all[key]; ok {
			scoped[key] = val
		}
	}
	return scoped
}

// Stringify renders a state value as text.
func Stringify(val any) string {
	switch val := val.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	}

	b, err := json.Marshal(val, json.Deterministic(true))
	if err != nil {
		return ""
	}
	return string(b)
}
