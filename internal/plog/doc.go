// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package plog implements a thin layer over logr, zap and klog to help enforce coralgate's
// logging convention. Logs are always structured as a constant message with key and value
// pairs of related metadata.
//
// The logging levels in order of increasing verbosity are:
// error, warning, info, debug, trace and all.
//
// error and warning logs are always emitted and should be actionable.
// info is for "nice to know" progress through a command, such as a CSR being submitted.
// debug is for developers and support cases, e.g. each poll attempt against a CSR.
// Care must be taken at debug and trace to never log private keys or certificate material.
// all is reserved for the most verbose output, including full client-go request logging.
package plog
