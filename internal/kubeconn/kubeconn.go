// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package kubeconn resolves the authenticated connection to the cluster's API server.
package kubeconn

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/cert"

	"go.coralgate.dev/internal/constable"
	"go.coralgate.dev/internal/plog"
	"go.coralgate.dev/internal/pversion"
)

const (
	ErrConfigNotInitialized = constable.Error("cluster connection has not been initialized")
	ErrRootCAMissing        = constable.Error("cluster connection has no certificate authority data")
	ErrMissingHome          = constable.Error("could not expand home directory: neither HOME nor USERPROFILE is set")
)

// Resolver resolves a Connection exactly once. Construct a new Resolver for each command invocation.
type Resolver struct {
	log      plog.Logger
	getenv   func(string) string
	resolved atomic.Bool
}

func NewResolver(log plog.Logger) *Resolver {
	return &Resolver{log: log, getenv: os.Getenv}
}

// Resolve loads the kubeconfig at pathOverride, or uses the default loading rules (KUBECONFIG,
// ~/.kube/config, then in-cluster config) when pathOverride is empty. A non-empty contextOverride
// replaces the kubeconfig's current context. Calling Resolve twice on the same Resolver panics.
func (r *Resolver) Resolve(pathOverride, contextOverride string) (*Connection, error) {
	if !r.resolved.CompareAndSwap(false, true) {
		panic("kubeconn: Resolve called more than once on the same Resolver")
	}

	path := ""
	if pathOverride != "" {
		var err error
		path, err = ExpandHome(pathOverride, r.getenv)
		if err != nil {
			return nil, err
		}
	}

	restConfig, err := newClientConfig(path, contextOverride).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: could not load kubeconfig: %w", ErrConfigNotInitialized, err)
	}

	// The trust bundle is read from CAData, so inline any certificate-authority file references.
	if err := rest.LoadTLSFiles(restConfig); err != nil {
		return nil, fmt.Errorf("%w: could not load TLS files referenced by kubeconfig: %w", ErrConfigNotInitialized, err)
	}

	restConfig.UserAgent = pversion.UserAgent()
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: could not create kubernetes client: %w", ErrConfigNotInitialized, err)
	}

	r.log.Debug("resolved cluster connection", "kubeconfig", path, "server", restConfig.Host)
	return NewConnection(restConfig, clientset), nil
}

// newClientConfig returns a clientcmd.ClientConfig given an optional kubeconfig path override and
// an optional context override.
func newClientConfig(kubeconfigPathOverride string, currentContextName string) clientcmd.ClientConfig {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	loadingRules.ExplicitPath = kubeconfigPathOverride
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{
		CurrentContext: currentContextName,
	})
}

// ExpandHome replaces a leading "~" in path with the user's home directory, taken from HOME and
// then USERPROFILE. Paths without a leading "~" are returned unchanged.
func ExpandHome(path string, getenv func(string) string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}

	home := getenv("HOME")
	if home == "" {
		home = getenv("USERPROFILE")
	}
	if home == "" {
		return "", fmt.Errorf("%w: %q", ErrMissingHome, path)
	}

	return filepath.Join(home, path[1:]), nil
}

// Connection is the resolved connection to one cluster. It is read-only once constructed.
type Connection struct {
	restConfig *rest.Config
	clientset  kubernetes.Interface
}

// NewConnection wraps an already loaded rest config and the clientset that talks to it.
func NewConnection(restConfig *rest.Config, clientset kubernetes.Interface) *Connection {
	return &Connection{restConfig: restConfig, clientset: clientset}
}

func (c *Connection) initialized() bool {
	return c != nil && c.restConfig != nil && c.clientset != nil
}

// ClusterURL returns the API server endpoint.
func (c *Connection) ClusterURL() (string, error) {
	if !c.initialized() {
		return "", ErrConfigNotInitialized
	}
	return c.restConfig.Host, nil
}

// Clientset returns the kubernetes client for this cluster.
func (c *Connection) Clientset() (kubernetes.Interface, error) {
	if !c.initialized() {
		return nil, ErrConfigNotInitialized
	}
	return c.clientset, nil
}

// TrustBundleBase64 re-encodes every certificate authority the connection trusts as a PEM block
// and returns the base64 encoding of their concatenation, ready to embed in a kubeconfig.
func (c *Connection) TrustBundleBase64() (string, error) {
	if !c.initialized() {
		return "", ErrConfigNotInitialized
	}
	if len(c.restConfig.CAData) == 0 {
		return "", ErrRootCAMissing
	}

	anchors, err := cert.ParseCertsPEM(c.restConfig.CAData)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRootCAMissing, err)
	}

	bundle, err := cert.EncodeCertificates(anchors...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRootCAMissing, err)
	}
	return base64.StdEncoding.EncodeToString(bundle), nil
}
