// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command arovi generates daily public-health briefings.
//
// Usage:
//
//	arovi brief --city Austin --state Texas
//	arovi schedule
//	arovi version
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
