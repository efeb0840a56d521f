// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"errors"
)

// NotImplementedError is the error type for unimplemented behaiviour.
type NotImplementedError string

// Error returns a string representation of the [NotImplementedError].
func (e NotImplementedError) Error() string {
	return string(e)
}

var (
	// ErrUndeclaredWrite is returned when an agent emits a state delta for a key outside its declared output keys.
	ErrUndeclaredWrite = errors.New("state write outside declared output keys")

	// ErrSessionNotFound is returned by a [SessionService] when the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
)
