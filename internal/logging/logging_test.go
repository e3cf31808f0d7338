package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{" WARNING ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"", zerolog.InfoLevel, false},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg, env(map[string]string{
		EnvLogLevel:   "error",
		EnvLogNoColor: "1",
		EnvLogJSON:    "true",
	}))
	assert.Equal(t, zerolog.ErrorLevel, cfg.Level)
	assert.True(t, cfg.NoColor)
	assert.True(t, cfg.JSON)

	cfg = defaultConfig(ProfileTest)
	applyEnvOverrides(&cfg, env(map[string]string{EnvLogJSON: "maybe"}))
	assert.False(t, cfg.JSON)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
}

func TestBuildJSON(t *testing.T) {
	var buf bytes.Buffer
	l := build(Config{Level: zerolog.InfoLevel, JSON: true}, &buf)

	l.Debug().Msg("hidden")
	l.Info().Str("component", "session").Msg("connected")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "connected", line["message"])
	assert.Equal(t, "session", line["component"])
	assert.NotContains(t, line, "time")
}

func TestBuildConsole(t *testing.T) {
	var buf bytes.Buffer
	l := build(defaultConfig(ProfileTest), &buf)
	l.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "DBG")
}
