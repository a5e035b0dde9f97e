// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
	"k8s.io/utils/clock"
	"sigs.k8s.io/yaml"

	"go.coralgate.dev/internal/csr"
	"go.coralgate.dev/internal/csrgen"
	"go.coralgate.dev/internal/filewrite"
	"go.coralgate.dev/internal/here"
	"go.coralgate.dev/internal/kubeconfig"
	"go.coralgate.dev/internal/kubeconn"
	"go.coralgate.dev/internal/plog"
	"go.coralgate.dev/internal/profile"
)

const (
	defaultValidityHours = 24 * 30
	defaultOutputPath    = "./kubeconfig"
	stdoutOutputPath     = "-"

	// maxExpireHours is the longest whole-hour validity a CertificateSigningRequest can request.
	maxExpireHours = int(csr.MaxValidity / time.Hour)
)

type generateDeps struct {
	getenv            func(key string) string
	log               plog.Logger
	clock             clock.Clock
	resolveConnection resolveConnectionFunc
	generateKey       func(commonName, organization string) (*csrgen.Result, error)
	writeFile         func(path string, data []byte) error
}

func generateRealDeps() generateDeps {
	return generateDeps{
		getenv:            os.Getenv,
		log:               plog.New(),
		clock:             clock.RealClock{},
		resolveConnection: resolveRealConnection,
		generateKey:       csrgen.Generate,
		writeFile: func(path string, data []byte) error {
			return filewrite.New(path).Write(data, filewrite.PrivatePerm)
		},
	}
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(newGenerateCommand(generateRealDeps()))
}

type generateFlags struct {
	user                      string
	namespace                 string
	kubeconfigPath            string
	kubeconfigContextOverride string
	expireHours               int
	profile                   profileName
	output                    string
	dryRun                    bool
}

func newGenerateCommand(deps generateDeps) *cobra.Command {
	cmd := &cobra.Command{
		Args:  cobra.NoArgs, // do not accept positional arguments for this command
		Use:   "generate",
		Short: "Generate a kubeconfig with restricted access for a user",
		Long: here.Doc(`
			Generate a kubeconfig with restricted access for a user.

			A new private key and certificate signing request are created for the user, with the
			profile's group as the organization. The request is submitted to the cluster, approved
			and, once the cluster has signed it, written out as a kubeconfig together with the key.
		`),
		SilenceUsage: true, // do not print usage message when commands fail
	}
	flags := &generateFlags{}

	f := cmd.Flags()
	f.StringVarP(&flags.user, "user", "u", "", "Name of the user to issue the kubeconfig for")
	f.StringVarP(&flags.namespace, "namespace", "n", "", "Namespace for the namespaced-readonly profile")
	f.StringVar(&flags.kubeconfigPath, "kubeconfig", deps.getenv("KUBECONFIG"), "Path to kubeconfig file")
	f.StringVar(&flags.kubeconfigContextOverride, "kubeconfig-context", "", "Kubeconfig context name (default: current active context)")
	f.IntVarP(&flags.expireHours, "expire", "e", defaultValidityHours, "How long the kubeconfig should be valid, in hours")
	f.VarP(&flags.profile, "profile", "p", "Permission profile, one of admin, cluster-readonly or namespaced-readonly")
	f.StringVarP(&flags.output, "output", "o", defaultOutputPath, `Where to write the kubeconfig, "-" for stdout`)
	f.BoolVar(&flags.dryRun, "dry-run", false, "Print the CertificateSigningRequest instead of submitting it")

	for _, name := range []string{"user", "profile"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runGenerate(cmd, deps, flags)
	}

	return cmd
}

func runGenerate(cmd *cobra.Command, deps generateDeps, flags *generateFlags) error {
	ctx := cmd.Context()

	if flags.expireHours <= 0 {
		return fmt.Errorf("--expire must be a positive number of hours, got %d", flags.expireHours)
	}
	if flags.expireHours > maxExpireHours {
		return fmt.Errorf("--expire must be at most %d hours, got %d", maxExpireHours, flags.expireHours)
	}
	validity := time.Duration(flags.expireHours) * time.Hour

	selected, err := profile.Lookup(string(flags.profile), flags.namespace)
	if err != nil {
		return err
	}

	key, err := deps.generateKey(flags.user, selected.Group)
	if err != nil {
		return err
	}

	if flags.dryRun {
		record := csr.Build(flags.user, selected.Group, key.RequestPEM, validity)
		data, err := yaml.Marshal(record.CSR)
		if err != nil {
			return fmt.Errorf("could not encode CertificateSigningRequest: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	conn, err := deps.resolveConnection(deps.log, flags.kubeconfigPath, flags.kubeconfigContextOverride)
	if err != nil {
		return err
	}

	// read everything the kubeconfig needs before anything is created in the cluster
	endpoint, err := conn.ClusterURL()
	if err != nil {
		return err
	}
	trustBundle, err := conn.TrustBundleBase64()
	if err != nil {
		return err
	}
	clientset, err := conn.Clientset()
	if err != nil {
		return err
	}

	controller := csr.NewController(clientset.CertificatesV1().CertificateSigningRequests(), deps.clock, deps.log)
	certificate, err := controller.Run(ctx, flags.user, selected.Group, key.RequestPEM, validity)
	if err != nil {
		return err
	}

	config, err := kubeconfig.Package(kubeconfig.Credential{
		Endpoint:          endpoint,
		TrustBundleBase64: trustBundle,
		Certificate:       certificate,
		PrivateKeyPEM:     key.PrivateKeyPEM,
		User:              flags.user,
	})
	if err != nil {
		return err
	}

	if flags.output == stdoutOutputPath {
		return kubeconfig.Write(cmd.OutOrStdout(), config)
	}
	return writeKubeconfigFile(cmd.ErrOrStderr(), deps, flags, config)
}

func writeKubeconfigFile(stderr io.Writer, deps generateDeps, flags *generateFlags, config clientcmdapi.Config) error {
	path, err := kubeconn.ExpandHome(flags.output, deps.getenv)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := kubeconfig.Write(&buf, config); err != nil {
		return err
	}
	if err := deps.writeFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("could not write kubeconfig: %w", err)
	}

	_, err = fmt.Fprintf(stderr, "Wrote kubeconfig for user %q with profile %q to %s\n", flags.user, flags.profile, path)
	return err
}
