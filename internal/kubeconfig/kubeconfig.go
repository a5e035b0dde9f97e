// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package kubeconfig packages an issued client certificate into a kubeconfig document.
package kubeconfig

import (
	"encoding/base64"
	"fmt"
	"io"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// ClusterName names the single cluster entry of every kubeconfig coralgate writes.
const ClusterName = "coralgate"

// Credential is everything needed to reach the cluster as User.
type Credential struct {
	Endpoint          string
	TrustBundleBase64 string
	Certificate       []byte
	PrivateKeyPEM     []byte
	User              string
}

// Package returns a kubeconfig with one cluster, one user entry keyed by the user's identity, and
// one current context named after the user which joins the two.
func Package(c Credential) (clientcmdapi.Config, error) {
	if c.User == "" {
		return clientcmdapi.Config{}, fmt.Errorf("credential has no user")
	}

	// The serializer base64 encodes this again, which reproduces TrustBundleBase64 exactly.
	trustBundle, err := base64.StdEncoding.DecodeString(c.TrustBundleBase64)
	if err != nil {
		return clientcmdapi.Config{}, fmt.Errorf("could not decode trust bundle: %w", err)
	}

	return clientcmdapi.Config{
		Kind:       "Config",
		APIVersion: clientcmdapi.SchemeGroupVersion.Version,
		Clusters: map[string]*clientcmdapi.Cluster{ClusterName: {
			Server:                   c.Endpoint,
			CertificateAuthorityData: trustBundle,
		}},
		AuthInfos: map[string]*clientcmdapi.AuthInfo{c.User: {
			ClientCertificateData: c.Certificate,
			ClientKeyData:         c.PrivateKeyPEM,
		}},
		Contexts: map[string]*clientcmdapi.Context{c.User: {
			Cluster:  ClusterName,
			AuthInfo: c.User,
		}},
		CurrentContext: c.User,
	}, nil
}

// Write serializes the kubeconfig as YAML.
func Write(out io.Writer, config clientcmdapi.Config) error {
	output, err := clientcmd.Write(config)
	if err != nil {
		return err
	}
	_, err = out.Write(output)
	if err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	return nil
}
