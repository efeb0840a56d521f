// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package types provides the core interfaces and contracts shared by every
// package of the briefing pipeline.
//
// # Agents
//
// An [Agent] is one stage of a workflow. Concrete agents embed the behavior
// of [BaseAgent] through delegation and implement [Agent.Execute]; the entry
// point [Agent.Run] wraps Execute with callbacks and rejects state deltas for
// keys outside [Agent.OutputKeys] with [ErrUndeclaredWrite].
//
// Agents communicate only through the session [State]. A stage never mutates
// the state directly: it yields an [Event] whose [EventActions.StateDelta] is
// committed by the [SessionService] when the runner appends the event.
// Because iteration over [Agent.Run] is synchronous, the delta of an event is
// visible to every stage that runs after the producing stage resumes.
//
//	for event, err := range agent.Run(ctx, ictx) {
//		if err != nil {
//			return err
//		}
//		if _, err := svc.AppendEvent(ctx, ses, event); err != nil {
//			return err
//		}
//	}
//
// # Models and tools
//
// [Model] is the oracle abstraction: one request in, one response out.
// A [Tool] is registered on the [LLMRequest] tool map; the flow executes only
// the function calls the model asks for.
package types
