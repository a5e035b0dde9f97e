// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"go.coralgate.dev/internal/here"
	"go.coralgate.dev/internal/plog"
)

//nolint:gochecknoglobals
var (
	rootLogLevel  string
	rootLogFormat string
)

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "coralgate",
	Short: "coralgate",
	Long: here.Doc(`
		coralgate mints short-lived, scoped kubeconfigs for named users by driving the
		cluster's CertificateSigningRequest API, and sets up the RBAC bindings they rely on.
	`),
	SilenceUsage: true, // do not print usage message when commands fail
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return plog.Configure(cmd.Context(), plog.LogSpec{
			Level:  plog.LogLevel(rootLogLevel),
			Format: plog.LogFormat(rootLogFormat),
		})
	},
}

//nolint:gochecknoinits
func init() {
	// We don't want klog flags showing up in our CLI.
	plog.RemoveKlogGlobalFlags()

	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", `Log verbosity on stderr, one of "info", "debug", "trace" or "all" (default: warnings and errors only)`)
	rootCmd.PersistentFlags().StringVar(&rootLogFormat, "log-format", string(plog.FormatCLI), `Log format on stderr, "cli" or "json"`)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	flush := plog.Setup()
	defer flush()

	return rootCmd.ExecuteContext(ctx)
}
