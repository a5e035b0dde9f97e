// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	apimachineryversion "k8s.io/apimachinery/pkg/version"
	"sigs.k8s.io/yaml"

	"go.coralgate.dev/internal/here"
	"go.coralgate.dev/internal/pversion"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantError  bool
		wantStderr string
		assertOut  func(t *testing.T, stdout []byte)
	}{
		{
			name: "help flag passed",
			args: []string{"--help"},
			assertOut: func(t *testing.T, stdout []byte) {
				require.Equal(t, here.Doc(`
					Print the version of this coralgate CLI

					Usage:
					  version [flags]

					Flags:
					  -h, --help            help for version
					  -o, --output format   Output format, one of text, json or yaml (default text)
				`), string(stdout))
			},
		},
		{
			name: "text by default",
			args: []string{},
			assertOut: func(t *testing.T, stdout []byte) {
				require.Equal(t, fmt.Sprintf("%#v\n", pversion.Get()), string(stdout))
			},
		},
		{
			name: "json",
			args: []string{"-o", "json"},
			assertOut: func(t *testing.T, stdout []byte) {
				var got apimachineryversion.Info
				require.NoError(t, json.Unmarshal(stdout, &got))
				require.Equal(t, pversion.Get(), got)
			},
		},
		{
			name: "yaml ignores case",
			args: []string{"--output", "YAML"},
			assertOut: func(t *testing.T, stdout []byte) {
				var got apimachineryversion.Info
				require.NoError(t, yaml.Unmarshal(stdout, &got))
				require.Equal(t, pversion.Get(), got)
			},
		},
		{
			name:      "unknown format",
			args:      []string{"-o", "xml"},
			wantError: true,
			wantStderr: `Error: invalid argument "xml" for "-o, --output" flag: ` +
				`invalid output format "xml", valid formats are text, json and yaml` + "\n",
			assertOut: func(t *testing.T, stdout []byte) {
				require.Empty(t, stdout)
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cmd := newVersionCommand()
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
			require.Equal(t, tt.wantStderr, stderr.String(), "unexpected stderr")
			tt.assertOut(t, stdout.Bytes())
		})
	}
}
