// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import "github.com/go-logr/logr"

const errorKey = "error"

// Logger is the logging interface used throughout coralgate. Use New to get one that follows
// the global log configuration.
type Logger interface {
	// Error logs an unexpected system error.
	Error(msg string, err error, keysAndValues ...interface{})
	Warning(msg string, keysAndValues ...interface{})
	WarningErr(msg string, err error, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	// InfoErr logs an expected error, e.g. a CSR that is not signed yet.
	InfoErr(msg string, err error, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	DebugErr(msg string, err error, keysAndValues ...interface{})
	Trace(msg string, keysAndValues ...interface{})
	TraceErr(msg string, err error, keysAndValues ...interface{})
	All(msg string, keysAndValues ...interface{})

	WithValues(keysAndValues ...interface{}) Logger
	WithName(name string) Logger

	// does not include WithCallDepth to prevent misuse
}

var _ Logger = pLogger{}

type pLogger struct {
	mods []func(logr.Logger) logr.Logger
}

func New() Logger {
	return pLogger{}
}

func (p pLogger) Error(msg string, err error, keysAndValues ...interface{}) {
	p.logr().WithCallDepth(1).Error(err, msg, keysAndValues...)
}

func (p pLogger) warningDepth(msg string, depth int, keysAndValues ...interface{}) {
	// logr has no concept of a warning, so use info at level zero with an extra key to find them
	keysAndValues = append([]interface{}{"warning", true}, keysAndValues...)
	p.infoDepth(vWarning, msg, depth+1, keysAndValues...)
}

func (p pLogger) Warning(msg string, keysAndValues ...interface{}) {
	p.warningDepth(msg, 1, keysAndValues...)
}

func (p pLogger) WarningErr(msg string, err error, keysAndValues ...interface{}) {
	p.warningDepth(msg, 1, append([]interface{}{errorKey, err}, keysAndValues...)...)
}

func (p pLogger) Info(msg string, keysAndValues ...interface{}) {
	p.infoDepth(vInfo, msg, 1, keysAndValues...)
}

func (p pLogger) InfoErr(msg string, err error, keysAndValues ...interface{}) {
	p.infoDepth(vInfo, msg, 1, append([]interface{}{errorKey, err}, keysAndValues...)...)
}

func (p pLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.infoDepth(vDebug, msg, 1, keysAndValues...)
}

func (p pLogger) DebugErr(msg string, err error, keysAndValues ...interface{}) {
	p.infoDepth(vDebug, msg, 1, append([]interface{}{errorKey, err}, keysAndValues...)...)
}

func (p pLogger) Trace(msg string, keysAndValues ...interface{}) {
	p.infoDepth(vTrace, msg, 1, keysAndValues...)
}

func (p pLogger) TraceErr(msg string, err error, keysAndValues ...interface{}) {
	p.infoDepth(vTrace, msg, 1, append([]interface{}{errorKey, err}, keysAndValues...)...)
}

func (p pLogger) All(msg string, keysAndValues ...interface{}) {
	p.infoDepth(vAll, msg, 1, keysAndValues...)
}

func (p pLogger) WithValues(keysAndValues ...interface{}) Logger {
	if len(keysAndValues) == 0 {
		return p
	}
	return p.withLogrMod(func(l logr.Logger) logr.Logger {
		return l.WithValues(keysAndValues...)
	})
}

func (p pLogger) WithName(name string) Logger {
	if len(name) == 0 {
		return p
	}
	return p.withLogrMod(func(l logr.Logger) logr.Logger {
		return l.WithName(name)
	})
}

func (p pLogger) infoDepth(level int, msg string, depth int, keysAndValues ...interface{}) {
	p.logr().WithCallDepth(depth+1).V(level).Info(msg, keysAndValues...)
}

func (p pLogger) withLogrMod(mod func(logr.Logger) logr.Logger) Logger {
	mods := make([]func(logr.Logger) logr.Logger, 0, len(p.mods)+1)
	mods = append(mods, p.mods...)
	mods = append(mods, mod)
	return pLogger{mods: mods}
}

// logr starts from the current global logger so that later calls to
// Configure are honored by loggers created earlier.
func (p pLogger) logr() logr.Logger {
	l := Logr()
	for _, mod := range p.mods {
		l = mod(l)
	}
	return l
}
