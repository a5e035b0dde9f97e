// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"go.coralgate.dev/internal/pversion"
)

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(newVersionCommand())
}

func newVersionCommand() *cobra.Command {
	output := outputText
	cmd := &cobra.Command{
		Args:  cobra.NoArgs, // do not accept positional arguments for this command
		Use:   "version",
		Short: "Print the version of this coralgate CLI",
	}
	cmd.Flags().VarP(&output, "output", "o", "Output format, one of text, json or yaml")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		info := pversion.Get()
		switch output {
		case outputJSON:
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		case outputYAML:
			data, err := yaml.Marshal(info)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		default:
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%#v\n", info)
			return err
		}
	}
	return cmd
}
