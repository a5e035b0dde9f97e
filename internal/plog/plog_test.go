// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestPlog(t *testing.T) {
	tests := []struct {
		name string
		run  func(Logger)
		want []map[string]interface{}
	}{
		{
			name: "info with key and value pairs",
			run: func(l Logger) {
				l.Info("submitted certificate signing request", "name", "alice-csr")
			},
			want: []map[string]interface{}{
				{"level": "info", "message": "submitted certificate signing request", "name": "alice-csr"},
			},
		},
		{
			name: "warning adds a marker key",
			run: func(l Logger) {
				l.Warning("certificate signing request was denied", "name", "alice-csr")
			},
			want: []map[string]interface{}{
				{"level": "info", "warning": true, "message": "certificate signing request was denied", "name": "alice-csr"},
			},
		},
		{
			name: "debug and trace errors carry the error key",
			run: func(l Logger) {
				l.DebugErr("fetching certificate signing request", errors.New("connection refused"), "attempt", 3)
				l.TraceErr("fetching certificate signing request", errors.New("timeout"))
			},
			want: []map[string]interface{}{
				{"level": "debug", "message": "fetching certificate signing request", "error": "connection refused", "attempt": float64(3)},
				{"level": "trace", "message": "fetching certificate signing request", "error": "timeout"},
			},
		},
		{
			name: "error level",
			run: func(l Logger) {
				l.Error("could not apply binding", errors.New("forbidden"), "binding", "cluster-admin-binding")
			},
			want: []map[string]interface{}{
				{"level": "error", "message": "could not apply binding", "error": "forbidden", "binding": "cluster-admin-binding"},
			},
		},
		{
			name: "with values and name",
			run: func(l Logger) {
				l.WithName("csr").WithValues("user", "alice").Info("approved")
			},
			want: []map[string]interface{}{
				{"level": "info", "logger": "csr", "message": "approved", "user": "alice"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := TestLogger(t)
			tt.run(l)

			got := decodeLines(t, buf)
			require.Len(t, got, len(tt.want))
			for i := range got {
				require.Equal(t, "2099-08-08T13:57:36.123456Z", got[i]["timestamp"])
				caller, ok := got[i]["caller"].(string)
				require.True(t, ok)
				require.True(t, strings.HasPrefix(caller, "plog/plog_test.go:<line>$plog.TestPlog"), caller)

				delete(got[i], "timestamp")
				delete(got[i], "caller")
				require.Empty(t, cmp.Diff(tt.want[i], got[i]))
			}
		})
	}
}

func TestConsoleLoggerHasNoLevelKey(t *testing.T) {
	var buf bytes.Buffer
	l := TestConsoleLogger(t, &buf)
	l.Info("wrote kubeconfig", "path", "./kubeconfig")

	line := buf.String()
	require.Contains(t, line, "wrote kubeconfig")
	require.Contains(t, line, `{"path": "./kubeconfig"}`)
	require.NotContains(t, line, `"level"`)
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}
