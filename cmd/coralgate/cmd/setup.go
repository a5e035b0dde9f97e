// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"

	"go.coralgate.dev/internal/here"
	"go.coralgate.dev/internal/plog"
	"go.coralgate.dev/internal/profile"
)

type setupDeps struct {
	getenv            func(key string) string
	log               plog.Logger
	resolveConnection resolveConnectionFunc
	newProfileClient  func(kubernetes.Interface) profile.Client
}

func setupRealDeps() setupDeps {
	return setupDeps{
		getenv:            os.Getenv,
		log:               plog.New(),
		resolveConnection: resolveRealConnection,
		newProfileClient:  profile.NewKubeClient,
	}
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(newSetupCommand(setupRealDeps()))
}

type setupFlags struct {
	kubeconfigPath            string
	kubeconfigContextOverride string
	namespace                 string
}

func newSetupCommand(deps setupDeps) *cobra.Command {
	cmd := &cobra.Command{
		Args:  cobra.NoArgs, // do not accept positional arguments for this command
		Use:   "setup",
		Short: "Create the role bindings used by issued kubeconfigs",
		Long: here.Doc(`
			Create the role bindings used by issued kubeconfigs.

			The admin and cluster-readonly profiles are always applied. When a namespace is given,
			the namespaced-readonly profile for that namespace is applied as well. This needs
			permission to manage ClusterRoleBindings and RoleBindings, and may be run repeatedly.
		`),
		SilenceUsage: true, // do not print usage message when commands fail
	}
	flags := &setupFlags{}

	f := cmd.Flags()
	f.StringVar(&flags.kubeconfigPath, "kubeconfig", deps.getenv("KUBECONFIG"), "Path to kubeconfig file")
	f.StringVar(&flags.kubeconfigContextOverride, "kubeconfig-context", "", "Kubeconfig context name (default: current active context)")
	f.StringVarP(&flags.namespace, "namespace", "n", "", "Also apply the namespaced-readonly profile for this namespace")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runSetup(cmd, deps, flags)
	}

	return cmd
}

func runSetup(cmd *cobra.Command, deps setupDeps, flags *setupFlags) error {
	profiles := []profile.Profile{profile.Admin(), profile.ClusterReadonly()}
	if flags.namespace != "" {
		profiles = append(profiles, profile.NamespacedReadonly(flags.namespace))
	}

	conn, err := deps.resolveConnection(deps.log, flags.kubeconfigPath, flags.kubeconfigContextOverride)
	if err != nil {
		return err
	}
	clientset, err := conn.Clientset()
	if err != nil {
		return err
	}

	applier := profile.NewApplier(deps.newProfileClient(clientset), deps.log)
	for _, p := range profiles {
		if err := applier.Apply(cmd.Context(), p); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Applied profile %q for group %q\n", p.Name, p.Group); err != nil {
			return err
		}
	}
	return nil
}
