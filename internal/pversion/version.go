// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pversion reports which build of coralgate is running.
package pversion

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/coreos/go-semver/semver"
	apimachineryversion "k8s.io/apimachinery/pkg/version"
	k8sstrings "k8s.io/utils/strings"
)

const unreleased = "v0.0.0"

//nolint:gochecknoglobals // swapped during unit tests
var readBuildInfo = debug.ReadBuildInfo

// gitVersion is set at release time with
// -ldflags "-X 'go.coralgate.dev/internal/pversion.gitVersion=v1.2.3'"
//
//nolint:gochecknoglobals // swapped during unit tests
var gitVersion string

// Get returns the version of the binary, combining the release tag from the linker flag with the
// VCS stamp that the Go toolchain records at build time.
func Get() apimachineryversion.Info {
	info := apimachineryversion.Info{
		Major:        "0",
		Minor:        "0",
		GitVersion:   unreleased,
		GitTreeState: "dirty",
		GoVersion:    runtime.Version(),
		Compiler:     runtime.Compiler,
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
	}

	if v, ok := parseRelease(gitVersion); ok {
		info.GitVersion = gitVersion
		info.Major = fmt.Sprintf("%d", v.Major)
		info.Minor = fmt.Sprintf("%d", v.Minor)
	}

	if buildInfo, ok := readBuildInfo(); ok {
		applyVCSSettings(&info, buildInfo.Settings)
	}

	// untagged builds are identified by their commit instead
	if info.GitVersion == unreleased && info.GitCommit != "" {
		info.GitVersion = fmt.Sprintf("%s-%s-%s", unreleased, k8sstrings.ShortenString(info.GitCommit, 8), info.GitTreeState)
	}

	return info
}

func parseRelease(tag string) (*semver.Version, bool) {
	v, err := semver.NewVersion(strings.TrimPrefix(tag, "v"))
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func applyVCSSettings(info *apimachineryversion.Info, settings []debug.BuildSetting) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			info.GitCommit = setting.Value
		case "vcs.time":
			info.BuildDate = setting.Value
		case "vcs.modified":
			if setting.Value == "false" {
				info.GitTreeState = "clean"
			}
		}
	}
}

// UserAgent identifies coralgate to the API server, e.g. "coralgate/v1.2.3 (linux/amd64)".
func UserAgent() string {
	info := Get()
	return fmt.Sprintf("coralgate/%s (%s)", info.GitVersion, info.Platform)
}
