package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/QuadTriangle/domlink/internal/decode"
	"github.com/QuadTriangle/domlink/internal/responder"
	"github.com/QuadTriangle/domlink/internal/transport"
	"github.com/QuadTriangle/domlink/internal/wire"
)

const (
	DefaultEndpoint       = "ws://localhost:8080/ws"
	DefaultReconnectDelay = 3000 * time.Millisecond
	DefaultPageTimeout    = 10 * time.Second

	// ClientHeader carries the persistent client id on the WebSocket handshake.
	ClientHeader = "X-Domlink-Client"
)

const (
	EnvEndpoint     = "DOMLINK_ENDPOINT"
	EnvProtocol     = "DOMLINK_PROTOCOL"
	EnvFieldBag     = "DOMLINK_FIELD_BAG"
	EnvResponseMode = "DOMLINK_RESPONSE_MODE"
	EnvInputMode    = "DOMLINK_INPUT_MODE"
	EnvTransport    = "DOMLINK_TRANSPORT"
	EnvPage         = "DOMLINK_PAGE"
)

// ErrInvalid wraps every configuration validation failure.
var ErrInvalid = errors.New("invalid config")

// Config selects the endpoint and the wire conventions of one deployment.
type Config struct {
	// Endpoint is empty until resolved; see ResolveEndpoint.
	Endpoint       string
	Protocol       decode.Protocol
	FieldBag       string
	ResponseMode   responder.ResponseMode
	InputMode      responder.InputMode
	Transport      transport.Kind
	ReconnectDelay time.Duration
	// Page is a file path or http(s) URL; empty means the built-in page.
	Page        string
	PageTimeout time.Duration
}

// Default returns the structured/Map/raw deployment.
func Default() Config {
	return Config{
		Protocol:       decode.ProtocolStructured,
		FieldBag:       wire.BagMap,
		ResponseMode:   responder.ResponseRaw,
		InputMode:      responder.InputRaw,
		Transport:      transport.KindGorilla,
		ReconnectDelay: DefaultReconnectDelay,
		PageTimeout:    DefaultPageTimeout,
	}
}

// Load returns defaults overlaid with the file at path (if any) and then the
// environment. The result is validated.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		fc, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := fc.apply(&cfg); err != nil {
			return Config{}, err
		}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	applyEnv(&cfg, getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(EnvEndpoint, &cfg.Endpoint)
	set(EnvFieldBag, &cfg.FieldBag)
	set(EnvPage, &cfg.Page)

	if v := strings.TrimSpace(getenv(EnvProtocol)); v != "" {
		cfg.Protocol = decode.Protocol(v)
	}
	if v := strings.TrimSpace(getenv(EnvResponseMode)); v != "" {
		cfg.ResponseMode = responder.ResponseMode(v)
	}
	if v := strings.TrimSpace(getenv(EnvInputMode)); v != "" {
		cfg.InputMode = responder.InputMode(v)
	}
	if v := strings.TrimSpace(getenv(EnvTransport)); v != "" {
		cfg.Transport = transport.Kind(v)
	}
}

// Validate checks every enumerated setting.
func (c Config) Validate() error {
	switch c.Protocol {
	case decode.ProtocolStructured, decode.ProtocolEval:
	default:
		return fmt.Errorf("%w: protocol %q", ErrInvalid, c.Protocol)
	}
	if c.FieldBag != wire.BagMap && c.FieldBag != wire.BagData {
		return fmt.Errorf("%w: field bag %q", ErrInvalid, c.FieldBag)
	}
	if c.ResponseMode != responder.ResponseRaw && c.ResponseMode != responder.ResponseEnvelope {
		return fmt.Errorf("%w: response mode %q", ErrInvalid, c.ResponseMode)
	}
	if c.InputMode != responder.InputRaw && c.InputMode != responder.InputCmd {
		return fmt.Errorf("%w: input mode %q", ErrInvalid, c.InputMode)
	}
	if c.Transport != transport.KindGorilla && c.Transport != transport.KindNhooyr {
		return fmt.Errorf("%w: transport %q", ErrInvalid, c.Transport)
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("%w: reconnect delay must be positive", ErrInvalid)
	}
	if c.PageTimeout <= 0 {
		return fmt.Errorf("%w: page timeout must be positive", ErrInvalid)
	}
	if c.Endpoint != "" && !isWebSocketURL(c.Endpoint) {
		return fmt.Errorf("%w: endpoint %q is not a ws:// or wss:// URL", ErrInvalid, c.Endpoint)
	}
	return nil
}

// ResolveEndpoint picks the configured endpoint, then the one the page
// declares, then the default.
func (c Config) ResolveEndpoint(fromPage string) string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if isWebSocketURL(fromPage) {
		return fromPage
	}
	return DefaultEndpoint
}

func isWebSocketURL(s string) bool {
	return strings.HasPrefix(s, "ws://") || strings.HasPrefix(s, "wss://")
}

// ClientID returns the id persisted under home/.domlink/id, creating it on
// first use.
func ClientID(home string) (string, error) {
	configDir := filepath.Join(home, ".domlink")
	idFile := filepath.Join(configDir, "id")

	if data, err := os.ReadFile(idFile); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read id file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	id := uuid.NewString()
	if err := os.WriteFile(idFile, []byte(id), 0o644); err != nil {
		return "", fmt.Errorf("failed to write id file: %w", err)
	}
	return id, nil
}

// DefaultClientID is ClientID in the user's home directory.
func DefaultClientID() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return ClientID(home)
}
