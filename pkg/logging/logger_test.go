package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		entries = append(entries, e)
	}
	return entries
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger("svc", "1.0.0", WarnLevel)
	l.SetOutput(&buf)

	l.Debug(context.Background(), "debug", nil)
	l.Info(context.Background(), "info", nil)
	l.Warn(context.Background(), "warn", Fields{"k": "v"})

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, "svc", entries[0].Service)
	assert.Equal(t, "v", entries[0].Fields["k"])
}

func TestStructuredLogger_ContextValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger("svc", "1.0.0", DebugLevel)
	l.SetOutput(&buf)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithStationID(ctx, "st-9")
	l.Error(ctx, "[TEST_ERROR] failed", Fields{}, errors.New("boom"))

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0].RequestID)
	assert.Equal(t, "st-9", entries[0].StationID)
	assert.Equal(t, "boom", entries[0].Error)
	assert.NotEmpty(t, entries[0].File)
}

func TestStructuredLogger_WarnErrCarriesError(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger("svc", "1.0.0", InfoLevel)
	l.SetOutput(&buf)

	l.WarnErr(context.Background(), "partial failure", nil, errors.New("rate limited"))

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "rate limited", entries[0].Error)
	assert.Empty(t, entries[0].File)
}

func TestStructuredLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger("svc", "1.0.0", WarnLevel)
	l.SetOutput(&buf)

	l.Debug(context.Background(), "hidden", nil)
	l.SetLevel(DebugLevel)
	l.Debug(context.Background(), "shown", nil)

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0].Message)
	assert.Equal(t, "DEBUG", entries[0].Level)
}

func TestContextLogger_WarnErrKeepsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger("svc", "1.0.0", InfoLevel)
	l.SetOutput(&buf)

	l.WithFields(Fields{"component": "sync"}).WarnErr(context.Background(), "station failed", Fields{"kind": "latest"}, errors.New("boom"))

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "sync", entries[0].Fields["component"])
	assert.Equal(t, "latest", entries[0].Fields["kind"])
	assert.Equal(t, "boom", entries[0].Error)
}

func TestContextLogger_MergesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger("svc", "1.0.0", InfoLevel)
	l.SetOutput(&buf)

	l.WithFields(Fields{"component": "sync", "k": "base"}).Info(context.Background(), "hello", Fields{"k": "override"})

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "sync", entries[0].Fields["component"])
	assert.Equal(t, "override", entries[0].Fields["k"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDiscardLogger(t *testing.T) {
	l := NewDiscardLogger()
	l.Error(context.Background(), "ignored", nil, errors.New("x"))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
}
