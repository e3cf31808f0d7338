package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	kdl "github.com/sblinch/kdl-go"

	"github.com/QuadTriangle/domlink/internal/decode"
	"github.com/QuadTriangle/domlink/internal/responder"
	"github.com/QuadTriangle/domlink/internal/transport"
)

// fileConfig is the on-disk shape shared by the TOML and KDL formats.
// Empty values leave the default in place.
type fileConfig struct {
	Endpoint       string `toml:"endpoint" kdl:"endpoint"`
	Protocol       string `toml:"protocol" kdl:"protocol"`
	FieldBag       string `toml:"field_bag" kdl:"field-bag"`
	ResponseMode   string `toml:"response_mode" kdl:"response-mode"`
	InputMode      string `toml:"input_mode" kdl:"input-mode"`
	Transport      string `toml:"transport" kdl:"transport"`
	ReconnectDelay string `toml:"reconnect_delay" kdl:"reconnect-delay"`
	Page           string `toml:"page" kdl:"page"`
	PageTimeout    string `toml:"page_timeout" kdl:"page-timeout"`
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, &fc)
		if err != nil {
			return fc, fmt.Errorf("load config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fc, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
		}
	case ".kdl":
		data, err := os.ReadFile(path)
		if err != nil {
			return fc, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := kdl.Unmarshal(data, &fc); err != nil {
			return fc, fmt.Errorf("load config %s: %w", path, err)
		}
	default:
		return fc, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, filepath.Ext(path))
	}
	return fc, nil
}

func (fc fileConfig) apply(cfg *Config) error {
	if v := strings.TrimSpace(fc.Endpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(fc.Protocol); v != "" {
		cfg.Protocol = decode.Protocol(v)
	}
	if v := strings.TrimSpace(fc.FieldBag); v != "" {
		cfg.FieldBag = v
	}
	if v := strings.TrimSpace(fc.ResponseMode); v != "" {
		cfg.ResponseMode = responder.ResponseMode(v)
	}
	if v := strings.TrimSpace(fc.InputMode); v != "" {
		cfg.InputMode = responder.InputMode(v)
	}
	if v := strings.TrimSpace(fc.Transport); v != "" {
		cfg.Transport = transport.Kind(v)
	}
	if v := strings.TrimSpace(fc.Page); v != "" {
		cfg.Page = v
	}
	if v := strings.TrimSpace(fc.ReconnectDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: reconnect_delay: %v", ErrInvalid, err)
		}
		cfg.ReconnectDelay = d
	}
	if v := strings.TrimSpace(fc.PageTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: page_timeout: %v", ErrInvalid, err)
		}
		cfg.PageTimeout = d
	}
	return nil
}
