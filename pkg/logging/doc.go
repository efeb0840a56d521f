// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging provides context-based structured logging on top of [log/slog].
//
// The command builds one logger with [New] and stores it in the context with
// [NewContext]; agents, tools and the runner retrieve it with [FromContext]:
//
//	logger := logging.New(os.Stderr, "info", "text")
//	ctx := logging.NewContext(ctx, logger)
//
//	logging.FromContext(ctx).InfoContext(ctx, "stage finished", slog.String("agent", name))
//
// When no logger is stored in the context, [FromContext] returns a JSON logger
// writing to stderr at INFO level.
package logging
