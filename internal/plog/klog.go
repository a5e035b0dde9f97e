// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import "github.com/spf13/pflag"

// klogInjectedFlags are registered on pflag.CommandLine as a side effect of importing component-base/logs.
//
//nolint:gochecknoglobals
var klogInjectedFlags = []string{"log-flush-frequency"}

// RemoveKlogGlobalFlags hides the flags that klog injects into the global flag set and refuses to
// run if one of them was set anyway, since coralgate only honors --log-level.
func RemoveKlogGlobalFlags() {
	hideFlags(pflag.CommandLine, klogInjectedFlags...)
}

func hideFlags(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if fs.Lookup(name) == nil {
			continue
		}
		if err := fs.MarkHidden(name); err != nil {
			panic(err)
		}
		if err := fs.MarkDeprecated(name, "unsupported"); err != nil {
			panic(err)
		}
		if fs.Changed(name) {
			panic("unsupported global klog flag set: " + name)
		}
	}
}
