// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// KubeconfigCluster describes one cluster/context pair for WriteKubeconfig.
type KubeconfigCluster struct {
	Context string
	Server  string
	CAData  []byte
	CAFile  string
}

// WriteKubeconfig writes a kubeconfig file named "kubeconfig" into dir with one context per
// cluster. The first cluster's context is the current context. It returns the file's path.
func WriteKubeconfig(t *testing.T, dir string, clusters ...KubeconfigCluster) string {
	t.Helper()
	require.NotEmpty(t, clusters)

	config := clientcmdapi.NewConfig()
	for _, c := range clusters {
		config.Clusters[c.Context+"-cluster"] = &clientcmdapi.Cluster{
			Server:                   c.Server,
			CertificateAuthorityData: c.CAData,
			CertificateAuthority:     c.CAFile,
		}
		config.AuthInfos[c.Context+"-user"] = &clientcmdapi.AuthInfo{Token: "some-token"}
		config.Contexts[c.Context] = &clientcmdapi.Context{
			Cluster:  c.Context + "-cluster",
			AuthInfo: c.Context + "-user",
		}
	}
	config.CurrentContext = clusters[0].Context

	path := filepath.Join(dir, "kubeconfig")
	require.NoError(t, clientcmd.WriteToFile(*config, path))
	return path
}
