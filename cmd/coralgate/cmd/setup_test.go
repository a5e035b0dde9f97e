// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	kubernetesfake "k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"
	coretesting "k8s.io/client-go/testing"

	"go.coralgate.dev/internal/here"
	"go.coralgate.dev/internal/kubeconn"
	"go.coralgate.dev/internal/plog"
	"go.coralgate.dev/internal/profile"
)

func TestSetup(t *testing.T) {
	helpOutputFormatString := here.Doc(`
		Create the role bindings used by issued kubeconfigs.

		The admin and cluster-readonly profiles are always applied. When a namespace is given,
		the namespaced-readonly profile for that namespace is applied as well. This needs
		permission to manage ClusterRoleBindings and RoleBindings, and may be run repeatedly.

		Usage:
		  setup [flags]

		Flags:
		  -h, --help                        help for setup
		      --kubeconfig string           Path to kubeconfig file%s
		      --kubeconfig-context string   Kubeconfig context name (default: current active context)
		  -n, --namespace string            Also apply the namespaced-readonly profile for this namespace
	`)

	tests := []struct {
		name         string
		args         []string
		env          map[string]string
		resolveErr   error
		patchErr     error
		wantError    bool
		wantStdout   string
		wantStderr   string
		wantPatches  []string
		wantResolved []string
	}{
		{
			name:       "help flag passed",
			args:       []string{"--help"},
			wantStdout: fmt.Sprintf(helpOutputFormatString, ""),
		},
		{
			name:       "help flag passed with KUBECONFIG env var set",
			args:       []string{"--help"},
			env:        map[string]string{"KUBECONFIG": "/path/to/kubeconfig"},
			wantStdout: fmt.Sprintf(helpOutputFormatString, ` (default "/path/to/kubeconfig")`),
		},
		{
			name:       "positional arguments are rejected",
			args:       []string{"extra"},
			wantError:  true,
			wantStderr: `Error: unknown command "extra" for "setup"` + "\n",
		},
		{
			name: "cluster profiles only",
			args: []string{},
			wantStdout: here.Doc(`
				Applied profile "admin" for group "cluster-admins"
				Applied profile "cluster-readonly" for group "cluster-readonly"
			`),
			wantPatches:  []string{"clusterrolebindings /cluster-admin-binding", "clusterrolebindings /cluster-readonly-binding"},
			wantResolved: []string{"", ""},
		},
		{
			name: "cluster profiles and a namespace",
			args: []string{"--kubeconfig", "/some/kubeconfig", "--kubeconfig-context", "some-context", "-n", "team-a"},
			wantStdout: here.Doc(`
				Applied profile "admin" for group "cluster-admins"
				Applied profile "cluster-readonly" for group "cluster-readonly"
				Applied profile "readonly-team-a" for group "readonly-team-a"
			`),
			wantPatches: []string{
				"clusterrolebindings /cluster-admin-binding",
				"clusterrolebindings /cluster-readonly-binding",
				"rolebindings team-a/readonly-team-a",
			},
			wantResolved: []string{"/some/kubeconfig", "some-context"},
		},
		{
			name:         "KUBECONFIG env var is the default kubeconfig",
			args:         []string{},
			env:          map[string]string{"KUBECONFIG": "/env/kubeconfig"},
			wantStdout:   "Applied profile \"admin\" for group \"cluster-admins\"\nApplied profile \"cluster-readonly\" for group \"cluster-readonly\"\n",
			wantPatches:  []string{"clusterrolebindings /cluster-admin-binding", "clusterrolebindings /cluster-readonly-binding"},
			wantResolved: []string{"/env/kubeconfig", ""},
		},
		{
			name:       "could not resolve the cluster connection",
			args:       []string{},
			resolveErr: kubeconn.ErrConfigNotInitialized,
			wantError:  true,
			wantStderr: "Error: cluster connection has not been initialized\n",
		},
		{
			name:        "applying stops at the first failure",
			args:        []string{"-n", "team-a"},
			patchErr:    errors.New("some server error"),
			wantError:   true,
			wantPatches: []string{"clusterrolebindings /cluster-admin-binding"},
			wantStderr: `Error: could not apply profile "admin": cluster API request failed: ` +
				`could not apply ClusterRoleBinding cluster-admin-binding: some server error` + "\n",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			clientset := kubernetesfake.NewSimpleClientset()
			var patches []string
			clientset.PrependReactor("patch", "*", func(action coretesting.Action) (bool, runtime.Object, error) {
				patch := action.(coretesting.PatchAction)
				require.Equal(t, types.ApplyPatchType, patch.GetPatchType())
				patches = append(patches, fmt.Sprintf("%s %s/%s", patch.GetResource().Resource, patch.GetNamespace(), patch.GetName()))
				if tt.patchErr != nil {
					return true, nil, tt.patchErr
				}
				if patch.GetResource().Resource == "rolebindings" {
					return true, &rbacv1.RoleBinding{}, nil
				}
				return true, &rbacv1.ClusterRoleBinding{}, nil
			})

			var resolved []string
			log, _ := plog.TestLogger(t)
			cmd := newSetupCommand(setupDeps{
				getenv: func(key string) string { return tt.env[key] },
				log:    log,
				resolveConnection: func(_ plog.Logger, kubeconfigPath, contextOverride string) (*kubeconn.Connection, error) {
					resolved = []string{kubeconfigPath, contextOverride}
					if tt.resolveErr != nil {
						return nil, tt.resolveErr
					}
					return kubeconn.NewConnection(&rest.Config{Host: "https://cluster.example.com"}, clientset), nil
				},
				newProfileClient: profile.NewKubeClient,
			})
			require.NotNil(t, cmd)

			var stdout, stderr bytes.Buffer
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if tt.wantError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantStdout, stdout.String(), "unexpected stdout")
			require.Equal(t, tt.wantStderr, stderr.String(), "unexpected stderr")
			require.Equal(t, tt.wantPatches, patches)
			if tt.wantResolved != nil {
				require.Equal(t, tt.wantResolved, resolved)
			}
		})
	}
}
