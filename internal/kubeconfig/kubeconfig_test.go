// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kubeconfig

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/yaml"

	"go.coralgate.dev/internal/here"
	"go.coralgate.dev/internal/testutil"
)

func TestPackage(t *testing.T) {
	t.Parallel()

	trustBundle := base64.StdEncoding.EncodeToString([]byte("some CA bundle"))

	tests := []struct {
		name       string
		credential Credential
		wantYAML   string
		wantErr    string
	}{
		{
			name: "happy path",
			credential: Credential{
				Endpoint:          "https://cluster.example.com:6443",
				TrustBundleBase64: trustBundle,
				Certificate:       []byte("some certificate"),
				PrivateKeyPEM:     []byte("some key"),
				User:              "alice",
			},
			wantYAML: here.Docf(`
				apiVersion: v1
				clusters:
				- cluster:
				    certificate-authority-data: %s
				    server: https://cluster.example.com:6443
				  name: coralgate
				contexts:
				- context:
				    cluster: coralgate
				    user: alice
				  name: alice
				current-context: alice
				kind: Config
				preferences: {}
				users:
				- name: alice
				  user:
				    client-certificate-data: %s
				    client-key-data: %s
				`,
				trustBundle,
				base64.StdEncoding.EncodeToString([]byte("some certificate")),
				base64.StdEncoding.EncodeToString([]byte("some key")),
			),
		},
		{
			name: "trust bundle is not base64",
			credential: Credential{
				Endpoint:          "https://cluster.example.com:6443",
				TrustBundleBase64: "not base64!",
				User:              "alice",
			},
			wantErr: "could not decode trust bundle: illegal base64 data at input byte 3",
		},
		{
			name: "no user",
			credential: Credential{
				Endpoint:          "https://cluster.example.com:6443",
				TrustBundleBase64: trustBundle,
			},
			wantErr: "credential has no user",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config, err := Package(tt.credential)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, config))
			require.YAMLEq(t, tt.wantYAML, buf.String())
		})
	}
}

func TestPackagedKubeconfigLoadsBack(t *testing.T) {
	t.Parallel()

	ca := testutil.NewCA(t, "some-cluster-ca")
	trustBundle := base64.StdEncoding.EncodeToString(ca.CertPEM)

	config, err := Package(Credential{
		Endpoint:          "https://cluster.example.com:6443",
		TrustBundleBase64: trustBundle,
		Certificate:       []byte("some certificate"),
		PrivateKeyPEM:     []byte("some key"),
		User:              "bob",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, config))

	// the embedded trust bundle is the same string the connection produced
	var raw struct {
		Clusters []struct {
			Cluster struct {
				CertificateAuthorityData string `json:"certificate-authority-data"`
			} `json:"cluster"`
		} `json:"clusters"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &raw))
	require.Len(t, raw.Clusters, 1)
	require.Equal(t, trustBundle, raw.Clusters[0].Cluster.CertificateAuthorityData)

	loaded, err := clientcmd.Load(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "bob", loaded.CurrentContext)
	require.Equal(t, ca.CertPEM, loaded.Clusters["coralgate"].CertificateAuthorityData)
	require.Equal(t, []byte("some certificate"), loaded.AuthInfos["bob"].ClientCertificateData)
	require.Equal(t, []byte("some key"), loaded.AuthInfos["bob"].ClientKeyData)

	restConfig, err := clientcmd.NewDefaultClientConfig(*loaded, &clientcmd.ConfigOverrides{}).ClientConfig()
	require.NoError(t, err)
	require.Equal(t, "https://cluster.example.com:6443", restConfig.Host)
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	config, err := Package(Credential{User: "alice"})
	require.NoError(t, err)

	err = Write(&testutil.ErrorWriter{ReturnError: errors.New("some write error")}, config)
	require.EqualError(t, err, "could not write output: some write error")
}
