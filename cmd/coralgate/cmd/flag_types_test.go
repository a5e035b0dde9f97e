// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestProfileName(t *testing.T) {
	var p profileName
	require.Equal(t, "", p.String())
	require.Equal(t, "profile", p.Type())

	require.NoError(t, p.Set("Cluster-Readonly"))
	require.Equal(t, "cluster-readonly", p.String())

	err := p.Set("root")
	require.EqualError(t, err, `invalid profile "root", valid profiles are admin, cluster-readonly, namespaced-readonly`)
	require.Equal(t, "cluster-readonly", p.String(), "a rejected value must not change the flag")
}

func TestOutputFormat(t *testing.T) {
	var o outputFormat
	require.Equal(t, "text", o.String())
	require.Equal(t, "format", o.Type())

	for _, valid := range []string{"text", "JSON", "yaml"} {
		require.NoError(t, o.Set(valid))
	}
	require.Equal(t, outputYAML, o)

	require.EqualError(t, o.Set("toml"), `invalid output format "toml", valid formats are text, json and yaml`)
	require.Equal(t, outputYAML, o)
}

func TestFlagTypesInFlagSet(t *testing.T) {
	var p profileName
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.VarP(&p, "profile", "p", "")
	require.NoError(t, fs.Parse([]string{"-p", "admin"}))
	require.Equal(t, profileName("admin"), p)
}
