package logger

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liscraper/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"ERROR", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := parseLogLevel(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, level)
		})
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "shouting"})
	assert.Error(t, err)
}

func TestNewBuildsLogger(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "info"})
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.NotNil(t, log.GetZerolog())
}

func TestWithFieldReturnsIndependentLoggers(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "disabled"})
	require.NoError(t, err)

	a := log.WithField("surface", "profile")
	b := log.WithField("surface", "posts")

	// Children must not share field state
	assert.NotSame(t, a, b)
	assert.NotSame(t, log, a)
}

func TestTestLoggerCapturesLevels(t *testing.T) {
	tl := NewTestLogger()

	tl.Debug("loading page")
	tl.Info("page loaded")
	tl.Warn("feed stopped growing")
	tl.Error("navigation failed")

	entries := tl.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "debug", entries[0].Level)
	assert.Equal(t, "page loaded", entries[1].Message)
	require.Len(t, tl.EntriesAt("warn"), 1)
	require.Len(t, tl.EntriesAt("error"), 1)
}

func TestTestLoggerChildrenShareRecorder(t *testing.T) {
	tl := NewTestLogger()

	tl.WithField("company", "acme").Warn("store lookup failed")
	tl.WithFields(map[string]interface{}{"round": 3}).Info("scroll round done")

	entries := tl.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "acme", entries[0].Fields["company"])
	assert.Equal(t, 3, entries[1].Fields["round"])
}

func TestTestLoggerFieldAccumulation(t *testing.T) {
	tl := NewTestLogger()

	tl.WithField("company", "acme").
		WithField("surface", "posts").
		WarnWithFields("capped", map[string]interface{}{"count": 50})

	entries := tl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "acme", entries[0].Fields["company"])
	assert.Equal(t, "posts", entries[0].Fields["surface"])
	assert.Equal(t, 50, entries[0].Fields["count"])
}

func TestTestLoggerCapturesError(t *testing.T) {
	tl := NewTestLogger()
	cause := errors.New("connection reset")

	tl.WithError(cause).Error("upstream request failed")

	entries := tl.EntriesAt("error")
	require.Len(t, entries, 1)
	assert.Equal(t, cause, entries[0].Err)
}

func TestTestLoggerContainsAndReset(t *testing.T) {
	tl := NewTestLogger()

	tl.Warn("rate limit reached for client-7")
	assert.True(t, tl.Contains("rate limit"))
	assert.False(t, tl.Contains("authwall"))

	tl.Reset()
	assert.Empty(t, tl.Entries())
	assert.False(t, tl.Contains("rate limit"))
}

func TestNopLoggerChainsAreSafe(t *testing.T) {
	log := NewNopLogger()

	chained := log.WithField("k", "v").
		WithFields(map[string]interface{}{"a": 1}).
		WithError(errors.New("ignored"))
	require.NotNil(t, chained)

	// None of these may panic
	chained.Debug("d")
	chained.Info("i")
	chained.Warn("w")
	chained.Error("e")
	chained.InfoWithFields("f", map[string]interface{}{"x": true})
}
