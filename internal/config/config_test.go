package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuadTriangle/domlink/internal/decode"
	"github.com/QuadTriangle/domlink/internal/responder"
	"github.com/QuadTriangle/domlink/internal/transport"
	"github.com/QuadTriangle/domlink/internal/wire"
)

func noEnv(string) string { return "" }

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3000*time.Millisecond, cfg.ReconnectDelay)
	assert.Equal(t, DefaultEndpoint, cfg.ResolveEndpoint(""))
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, "domlink.toml", `
endpoint = "ws://chat.test/ws"
protocol = "eval"
field_bag = "Data"
response_mode = "envelope"
input_mode = "cmd"
transport = "nhooyr"
reconnect_delay = "1500ms"
page = "page.html"
`)
	cfg, err := Load(p, noEnv)
	require.NoError(t, err)
	assert.Equal(t, "ws://chat.test/ws", cfg.Endpoint)
	assert.Equal(t, decode.ProtocolEval, cfg.Protocol)
	assert.Equal(t, wire.BagData, cfg.FieldBag)
	assert.Equal(t, responder.ResponseEnvelope, cfg.ResponseMode)
	assert.Equal(t, responder.InputCmd, cfg.InputMode)
	assert.Equal(t, transport.KindNhooyr, cfg.Transport)
	assert.Equal(t, 1500*time.Millisecond, cfg.ReconnectDelay)
	assert.Equal(t, "page.html", cfg.Page)
}

func TestLoadTOMLUnknownKey(t *testing.T) {
	p := writeFile(t, "domlink.toml", `endpont = "ws://typo"`)
	_, err := Load(p, noEnv)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadKDL(t *testing.T) {
	p := writeFile(t, "domlink.kdl", `
endpoint "wss://chat.test/ws"
field-bag "Data"
response-mode "envelope"
`)
	cfg, err := Load(p, noEnv)
	require.NoError(t, err)
	assert.Equal(t, "wss://chat.test/ws", cfg.Endpoint)
	assert.Equal(t, wire.BagData, cfg.FieldBag)
	assert.Equal(t, responder.ResponseEnvelope, cfg.ResponseMode)
	assert.Equal(t, decode.ProtocolStructured, cfg.Protocol)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	p := writeFile(t, "domlink.yaml", "endpoint: x")
	_, err := Load(p, noEnv)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestEnvOverridesFile(t *testing.T) {
	p := writeFile(t, "domlink.toml", `endpoint = "ws://file.test/ws"`)
	env := map[string]string{
		EnvEndpoint:     "ws://env.test/ws",
		EnvResponseMode: "envelope",
	}
	cfg, err := Load(p, func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, "ws://env.test/ws", cfg.Endpoint)
	assert.Equal(t, responder.ResponseEnvelope, cfg.ResponseMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"protocol", func(c *Config) { c.Protocol = "exec" }},
		{"bag", func(c *Config) { c.FieldBag = "Both" }},
		{"response", func(c *Config) { c.ResponseMode = "json" }},
		{"input", func(c *Config) { c.InputMode = "shell" }},
		{"transport", func(c *Config) { c.Transport = "tcp" }},
		{"delay", func(c *Config) { c.ReconnectDelay = 0 }},
		{"endpoint", func(c *Config) { c.Endpoint = "http://x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestResolveEndpoint(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "ws://page/ws", cfg.ResolveEndpoint("ws://page/ws"))
	assert.Equal(t, DefaultEndpoint, cfg.ResolveEndpoint("{{.SockUrl}}"))

	cfg.Endpoint = "wss://cfg/ws"
	assert.Equal(t, "wss://cfg/ws", cfg.ResolveEndpoint("ws://page/ws"))
}

func TestFlagsOverride(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--endpoint", "ws://flag/ws", "--input-mode", "cmd", "--config", "x.toml"}))

	cfg := Default()
	cfg.Endpoint = "ws://env/ws"
	cfg.ResponseMode = responder.ResponseEnvelope
	require.NoError(t, f.Apply(&cfg))

	assert.Equal(t, "ws://flag/ws", cfg.Endpoint)
	assert.Equal(t, responder.InputCmd, cfg.InputMode)
	assert.Equal(t, responder.ResponseEnvelope, cfg.ResponseMode, "unset flags keep loaded values")
	assert.Equal(t, "x.toml", f.Path)

	require.NoError(t, fs.Set("protocol", "bogus"))
	assert.ErrorIs(t, f.Apply(&cfg), ErrInvalid)
}

func TestClientIDPersists(t *testing.T) {
	home := t.TempDir()

	id, err := ClientID(home)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	again, err := ClientID(home)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	data, err := os.ReadFile(filepath.Join(home, ".domlink", "id"))
	require.NoError(t, err)
	assert.Equal(t, id, string(data))
}
