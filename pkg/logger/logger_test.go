package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithUserID(ctx, "user-1")

	log.Error(ctx, "boom", errors.New("boom"))

	entry := decodeEntry(t, buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "user-1", entry["user_id"])
	assert.Equal(t, "test", entry["service"])
	assert.Contains(t, entry, "stack")
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})
	log.Warn(context.Background(), "quiet")
	assert.NotContains(t, decodeEntry(t, buf), "stack")

	buf.Reset()
	log = New(Options{ServiceName: "test", Output: buf, WarnStack: true})
	log.Warn(context.Background(), "loud")
	assert.Contains(t, decodeEntry(t, buf), "stack")
}

func TestWithCartTokenTruncates(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	ctx := log.WithCartToken(context.Background(), "abcdefghijklmnop")
	log.Info(ctx, "cart.view")

	assert.Equal(t, "abcdefgh", decodeEntry(t, buf)["cart"])
}

func TestParseLevelDefaults(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("invalid"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
}

func TestWithFieldsTypesValues(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Format: FormatJSON, Output: buf})

	ctx := log.WithFields(context.Background(), map[string]any{
		"attempts": 3,
		"took":     1500 * time.Millisecond,
		"cause":    errors.New("timeout"),
		"ok":       false,
	})
	log.Info(ctx, "done")

	entry := decodeEntry(t, buf)
	assert.EqualValues(t, 3, entry["attempts"])
	assert.EqualValues(t, 1500, entry["took"])
	assert.Equal(t, "timeout", entry["cause"])
	assert.Equal(t, false, entry["ok"])
}

func TestConsoleFormatIsNotJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	t.Setenv("LOG_NO_COLOR", "true")
	log := New(Options{ServiceName: "test", Format: FormatConsole, Output: buf})
	log.Info(context.Background(), "hello")

	assert.Contains(t, buf.String(), "hello")
	assert.Error(t, json.Unmarshal(buf.Bytes(), &map[string]any{}))
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	ctx := log.WithRequestID(context.Background(), "r")
	assert.NotPanics(t, func() { log.Error(ctx, "x", errors.New("y")) })
}
