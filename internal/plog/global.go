// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"context"
	"strconv"

	"github.com/go-logr/logr"
	"go.uber.org/zap"
	"k8s.io/component-base/logs"
	"k8s.io/klog/v2"
)

// The globals are unguarded: they are written during init and once more by Configure, before any
// command does work.
//
//nolint:gochecknoglobals
var (
	globalLevel  = zap.NewAtomicLevelAt(zapLevel(vWarning))
	globalLogger logr.Logger
	globalFlush  func()
)

//nolint:gochecknoinits
func init() {
	log, flush, err := newLogr(context.Background(), FormatCLI)
	if err != nil {
		panic(err) // the default configuration is static
	}
	setGlobalLoggers(log, flush)
}

// LogSpec is the logging configuration chosen on the command line.
type LogSpec struct {
	Level  LogLevel
	Format LogFormat
}

// Configure validates spec and replaces the global logger and level used by New and by klog.
// Nothing is changed when spec is invalid.
func Configure(ctx context.Context, spec LogSpec) error {
	v, ok := spec.Level.klogLevel()
	if !ok {
		return errInvalidLogLevel
	}

	log, flush, err := newLogr(ctx, spec.Format)
	if err != nil {
		return err
	}

	// klog gates client-go's logs, zap gates ours
	if _, err := logs.GlogSetter(strconv.Itoa(int(v))); err != nil {
		panic(err) // v is always a valid number
	}
	globalLevel.SetLevel(zapLevel(v))

	setGlobalLoggers(log, flush)
	return nil
}

// Logr returns the current global logr.Logger, for libraries that accept one.
func Logr() logr.Logger {
	return globalLogger
}

// Setup initializes klog and returns a func that flushes all buffered logs.
func Setup() func() {
	logs.InitLogs()
	return func() {
		logs.FlushLogs()
		globalFlush()
	}
}

func setGlobalLoggers(log logr.Logger, flush func()) {
	// our zap core checks levels itself, so klog may hand it every V(n) call
	klog.SetLoggerWithOptions(log, klog.ContextualLogger(true), klog.FlushLogger(flush))
	globalLogger = log
	globalFlush = flush
}
