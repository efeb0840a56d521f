// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent provides the stages and composition operators of a workflow.
//
// Two kinds of leaf stages exist:
//
//   - [LLMAgent] calls the oracle with an instruction rendered from state,
//     runs the tools the oracle asks for and writes its final text under its
//     output key
//   - [FuncAgent] computes a state delta locally from a read-only view of state
//
// and three composition operators:
//
//   - [SequentialAgent] runs its sub-agents one after another
//   - [ParallelAgent] runs its sub-agents concurrently, each in its own branch;
//     sub-agents must declare disjoint output keys
//   - [LoopAgent] repeats its sub-agents up to a maximum number of iterations,
//     or until a sub-agent escalates
//
// Every agent emits its work as an iter.Seq2[*types.Event, error]. State
// changes travel as [types.EventActions.StateDelta] and are committed by the
// consumer of the stream, normally the runner:
//
//	draft, err := agent.NewLLMAgent(ctx, "draft",
//		agent.WithModel(m),
//		agent.WithInstruction("Write a briefing from {trend_notes}."),
//		agent.WithInputKeys("trend_notes"),
//		agent.WithOutputKey("briefing_draft"),
//	)
//	if err != nil {
//		return err
//	}
//	pipeline := agent.NewSequentialAgent("pipeline", trend, draft)
//
// An agent that emits a delta for a key it did not declare fails with
// [types.ErrUndeclaredWrite].
package agent
