package config

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/QuadTriangle/domlink/internal/decode"
	"github.com/QuadTriangle/domlink/internal/responder"
	"github.com/QuadTriangle/domlink/internal/transport"
)

// Flags holds the command-line overrides. Only flags the user set are applied.
type Flags struct {
	fs *pflag.FlagSet

	Path           string
	endpoint       string
	protocol       string
	fieldBag       string
	responseMode   string
	inputMode      string
	transport      string
	page           string
	reconnectDelay time.Duration
}

// RegisterFlags adds the config flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVarP(&f.Path, "config", "c", "", "config file (.toml or .kdl)")
	fs.StringVar(&f.endpoint, "endpoint", "", "WebSocket endpoint (env "+EnvEndpoint+")")
	fs.StringVar(&f.protocol, "protocol", "", "inbound variant: structured or eval")
	fs.StringVar(&f.fieldBag, "field-bag", "", "structured field bag: Map or Data")
	fs.StringVar(&f.responseMode, "response-mode", "", "query responses: raw or envelope")
	fs.StringVar(&f.inputMode, "input-mode", "", "typed input: raw or cmd")
	fs.StringVar(&f.transport, "transport", "", "WebSocket library: gorilla or nhooyr")
	fs.StringVar(&f.page, "page", "", "page to load: file path or http(s) URL")
	fs.DurationVar(&f.reconnectDelay, "reconnect-delay", DefaultReconnectDelay, "wait between reconnect attempts")
	return f
}

// Apply overlays the flags the user set onto cfg and revalidates it.
func (f *Flags) Apply(cfg *Config) error {
	changed := f.fs.Changed
	if changed("endpoint") {
		cfg.Endpoint = f.endpoint
	}
	if changed("protocol") {
		cfg.Protocol = decode.Protocol(f.protocol)
	}
	if changed("field-bag") {
		cfg.FieldBag = f.fieldBag
	}
	if changed("response-mode") {
		cfg.ResponseMode = responder.ResponseMode(f.responseMode)
	}
	if changed("input-mode") {
		cfg.InputMode = responder.InputMode(f.inputMode)
	}
	if changed("transport") {
		cfg.Transport = transport.Kind(f.transport)
	}
	if changed("page") {
		cfg.Page = f.page
	}
	if changed("reconnect-delay") {
		cfg.ReconnectDelay = f.reconnectDelay
	}
	return cfg.Validate()
}
