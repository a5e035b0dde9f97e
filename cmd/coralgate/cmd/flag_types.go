// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"go.coralgate.dev/internal/profile"
)

// profileName is a pflag.Value which only accepts the names of built-in profiles.
type profileName string

var _ pflag.Value = new(profileName)

func (p *profileName) String() string {
	return string(*p)
}

func (p *profileName) Set(s string) error {
	for _, name := range profile.Names() {
		if strings.EqualFold(s, name) {
			*p = profileName(name)
			return nil
		}
	}
	return fmt.Errorf("invalid profile %q, valid profiles are %s", s, strings.Join(profile.Names(), ", "))
}

func (p *profileName) Type() string {
	return "profile"
}

// outputFormat selects how the version command prints.
type outputFormat string

var _ pflag.Value = new(outputFormat)

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

func (o *outputFormat) String() string {
	if *o == "" {
		return string(outputText)
	}
	return string(*o)
}

func (o *outputFormat) Set(s string) error {
	switch f := outputFormat(strings.ToLower(s)); f {
	case outputText, outputJSON, outputYAML:
		*o = f
		return nil
	default:
		return fmt.Errorf("invalid output format %q, valid formats are text, json and yaml", s)
	}
}

func (o *outputFormat) Type() string {
	return "format"
}
