// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/duration"

	"go.coralgate.dev/internal/constable"
)

// LogFormat selects the encoding of log lines on stderr.
type LogFormat string

const (
	FormatJSON LogFormat = "json"
	FormatCLI  LogFormat = "cli"

	errInvalidLogFormat = constable.Error("invalid log format, valid choices are the empty string, 'json' and 'cli'")
)

// output is where a logger writes and how it decides what to write. Tests replace parts of it
// through the context passed to newLogr.
type output struct {
	w      io.Writer
	level  zapcore.LevelEnabler
	stack  zapcore.LevelEnabler
	clock  zapcore.Clock
	caller zapcore.CallerEncoder // nil picks the format's default
}

type outputContextKey struct{}

func withOutput(ctx context.Context, mod func(*output)) context.Context {
	return context.WithValue(ctx, outputContextKey{}, mod)
}

func newLogr(ctx context.Context, format LogFormat) (logr.Logger, func(), error) {
	out := output{
		w:     os.Stderr,
		level: globalLevel,
		stack: LevelTrace,
		clock: zapcore.DefaultClock,
	}
	if mod, ok := ctx.Value(outputContextKey{}).(func(*output)); ok {
		mod(&out)
	}

	encoder, err := newEncoder(format, out.caller)
	if err != nil {
		return logr.Logger{}, nil, err
	}

	sink := zapcore.Lock(zapcore.AddSync(out.w))
	log := zap.New(zapcore.NewCore(encoder, sink, out.level),
		zap.AddCaller(),
		zap.AddStacktrace(out.stack),
		zap.WithClock(out.clock),
		zap.ErrorOutput(sink),
	)

	return zapr.NewLogger(log), func() { _ = log.Sync() }, nil
}

func newEncoder(format LogFormat, caller zapcore.CallerEncoder) (zapcore.Encoder, error) {
	config := zapcore.EncoderConfig{
		MessageKey:    "message",
		LevelKey:      "level",
		TimeKey:       "timestamp",
		NameKey:       "logger",
		CallerKey:     "caller",
		FunctionKey:   zapcore.OmitKey, // callerEncoder appends the function
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   levelEncoder,
		// microsecond precision, the same as klog
		EncodeTime:       zapcore.TimeEncoderOfLayout(metav1.RFC3339Micro),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     callerEncoder,
		ConsoleSeparator: "  ",
	}

	switch format {
	case "", FormatJSON:
		if caller != nil {
			config.EncodeCaller = caller
		}
		return zapcore.NewJSONEncoder(config), nil
	case FormatCLI:
		config.LevelKey = zapcore.OmitKey
		config.EncodeTime = humanTimeEncoder
		config.EncodeDuration = humanDurationEncoder
		config.EncodeCaller = zapcore.ShortCallerEncoder
		if caller != nil {
			config.EncodeCaller = caller
		}
		return zapcore.NewConsoleEncoder(config), nil
	default:
		return nil, errInvalidLogFormat
	}
}

func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if name := levelName(l); name != "" {
		enc.AppendString(name)
	}
}

func callerEncoder(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(caller.String() + funcSuffix(caller))
}

// funcSuffix renders pkg.Func for the caller's function.
func funcSuffix(caller zapcore.EntryCaller) string {
	name := caller.Function
	if idx := strings.LastIndexByte(name, '/'); idx != -1 {
		name = name[idx+1:]
	}
	return "$" + name
}

func humanDurationEncoder(d time.Duration, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(duration.HumanDuration(d))
}

func humanTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Local().Format(time.RFC1123))
}
