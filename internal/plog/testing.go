// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"bytes"
	"context"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/utils/clock"
	clocktesting "k8s.io/utils/clock/testing"
)

// TestLogger returns a Logger that writes JSON lines at every level into the returned buffer.
// Timestamps are fixed at 2099-08-08T13:57:36.123456Z and callers are reported without line numbers.
func TestLogger(t *testing.T) (Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	return testLogger(t, &buf, FormatJSON), &buf
}

// TestConsoleLogger is TestLogger with the cli format, writing to w.
func TestConsoleLogger(t *testing.T, w io.Writer) Logger {
	t.Helper()

	return testLogger(t, w, FormatCLI)
}

func testLogger(t *testing.T, w io.Writer, format LogFormat) Logger {
	t.Helper()

	now := time.Date(2099, time.August, 8, 13, 57, 36, 123456789, time.UTC)
	ctx := withOutput(context.Background(), func(o *output) {
		o.w = w
		o.level = zap.NewAtomicLevelAt(math.MinInt8)
		o.stack = zap.LevelEnablerFunc(func(zapcore.Level) bool { return false })
		o.clock = zapClock{clock: clocktesting.NewFakeClock(now)}
		o.caller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
			trimmed := caller.TrimmedPath()
			if idx := strings.LastIndexByte(trimmed, ':'); idx != -1 {
				trimmed = trimmed[:idx+1] + "<line>"
			}
			if format != FormatCLI {
				trimmed += funcSuffix(caller)
			}
			enc.AppendString(trimmed)
		}
	})

	zl, _, err := newLogr(ctx, format)
	require.NoError(t, err)

	return New().(pLogger).withLogrMod(func(l logr.Logger) logr.Logger {
		return l.WithSink(zl.GetSink())
	})
}

var _ zapcore.Clock = zapClock{}

// zapClock lets zap read time from a k8s.io/utils clock.
type zapClock struct {
	clock clock.Clock
}

func (c zapClock) Now() time.Time {
	return c.clock.Now()
}

func (c zapClock) NewTicker(d time.Duration) *time.Ticker {
	return &time.Ticker{C: c.clock.Tick(d)}
}
