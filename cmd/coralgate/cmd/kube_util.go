// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"go.coralgate.dev/internal/kubeconn"
	"go.coralgate.dev/internal/plog"
)

// resolveConnectionFunc returns the connection to the cluster named by an optional kubeconfig path
// and an optional context override.
type resolveConnectionFunc func(log plog.Logger, kubeconfigPath, kubeconfigContextOverride string) (*kubeconn.Connection, error)

// resolveRealConnection resolves exactly once per command invocation.
func resolveRealConnection(log plog.Logger, kubeconfigPath, kubeconfigContextOverride string) (*kubeconn.Connection, error) {
	return kubeconn.NewResolver(log).Resolve(kubeconfigPath, kubeconfigContextOverride)
}
