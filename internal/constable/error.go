// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package constable provides an error type that can be declared as a constant.
// Each coralgate package declares its error kinds with it, and callers match
// them with errors.Is after they have been wrapped with fmt.Errorf("%w: ...").
package constable

var _ error = Error("")

// Error is a sentinel error whose identity is its message.
type Error string

func (e Error) Error() string { return string(e) }
