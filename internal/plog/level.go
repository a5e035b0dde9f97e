// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"go.uber.org/zap/zapcore"
	"k8s.io/klog/v2"

	"go.coralgate.dev/internal/constable"
)

// LogLevel is the verbosity selected with --log-level. In order of increasing verbosity the
// valid values are the empty string (warnings and errors only), info, debug, trace and all.
type LogLevel string

const (
	LevelWarning LogLevel = ""
	LevelInfo    LogLevel = "info"
	LevelDebug   LogLevel = "debug"
	LevelTrace   LogLevel = "trace"
	LevelAll     LogLevel = "all"

	errInvalidLogLevel = constable.Error("invalid log level, valid choices are the empty string, info, debug, trace and all")
)

// logr verbosities used by Logger. klog uses the same numbers, so client-go's own V(n) logs
// line up with ours.
const (
	vWarning = 0
	vInfo    = 2
	vDebug   = 4
	vTrace   = 6
	vAll     = 8
)

// klogLevels maps each LogLevel to the klog verbosity that enables it. all is pushed far past
// vAll so that every client-go log is included.
//
//nolint:gochecknoglobals
var klogLevels = map[LogLevel]klog.Level{
	LevelWarning: vWarning,
	LevelInfo:    vInfo,
	LevelDebug:   vDebug,
	LevelTrace:   vTrace,
	LevelAll:     vAll + 100,
}

func (l LogLevel) klogLevel() (klog.Level, bool) {
	v, ok := klogLevels[l]
	return v, ok
}

// zapLevel converts a klog verbosity to zap, which counts verbosity downwards.
func zapLevel(v klog.Level) zapcore.Level {
	return zapcore.Level(-v)
}

// levelName is the inverse of klogLevels for the level key of a log line.
func levelName(l zapcore.Level) string {
	if l > 0 {
		return l.String() // error and above
	}
	switch v := -l; {
	case v >= vAll:
		return string(LevelAll)
	case v >= vTrace:
		return string(LevelTrace)
	case v >= vDebug:
		return string(LevelDebug)
	case v >= vInfo:
		return string(LevelInfo)
	default:
		return "" // V(0) is both warnings and klog's unleveled info
	}
}

var _ zapcore.LevelEnabler = LevelTrace

// Enabled implements zapcore.LevelEnabler for stack traces: errors carry a stack trace only while
// the global level is at least l.
func (l LogLevel) Enabled(zl zapcore.Level) bool {
	v, ok := l.klogLevel()
	return ok && zl >= zapcore.ErrorLevel && globalLevel.Enabled(zapLevel(v))
}
