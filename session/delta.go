// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"strings"

	"github.com/go-a2a/arovi/types"
)

// splitDelta splits a state delta into its app, user and session scoped parts.
//
// Keys with the temp prefix are dropped: they live only inside the event.
func splitDelta(delta map[string]any) (app, user, ses map[string]any) {
	app = make(map[string]any)
	user = make(map[string]any)
	ses = make(map[string]any)
	for key, value := range delta {
		switch {
		case strings.HasPrefix(key, types.TempPrefix):
		case strings.HasPrefix(key, types.AppPrefix):
			app[strings.TrimPrefix(key, types.AppPrefix)] = value
		case strings.HasPrefix(key, types.UserPrefix):
			user[strings.TrimPrefix(key, types.UserPrefix)] = value
		default:
			ses[key] = value
		}
	}
	return app, user, ses
}

// committedDelta returns the part of the event delta that is committed to the session state.
func committedDelta(event *types.Event) map[string]any {
	if event.Actions == nil || len(event.Actions.StateDelta) == 0 {
		return nil
	}

	delta := make(map[string]any, len(event.Actions.StateDelta))
	for key, value := range event.Actions.StateDelta {
		if strings.HasPrefix(key, types.TempPrefix) {
			continue
		}
		delta[key] = value
	}
	return delta
}

// withPrefix returns a copy of m with prefix added to every key.
func withPrefix(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[prefix+key] = value
	}
	return out
}
