// Package decode turns raw wire messages into commands. Decoding either
// yields a complete command or an error wrapping ErrIgnored; nothing in a
// message is ever executed as code.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/QuadTriangle/domlink/internal/wire"
)

// ErrIgnored marks a message that must be dropped.
var ErrIgnored = errors.New("message ignored")

// Protocol selects the inbound wire variant of a deployment.
type Protocol string

const (
	ProtocolStructured Protocol = "structured"
	ProtocolEval       Protocol = "eval"
)

// AllowFunc reports whether a command name may execute.
type AllowFunc func(name string) bool

// Decoder decodes one wire variant.
type Decoder struct {
	protocol Protocol
	bag      string
	allowed  AllowFunc
}

// New returns a decoder. bag is only used by the structured variant.
func New(protocol Protocol, bag string, allowed AllowFunc) (*Decoder, error) {
	switch protocol {
	case ProtocolStructured:
		if bag != wire.BagMap && bag != wire.BagData {
			return nil, fmt.Errorf("unknown field bag %q", bag)
		}
	case ProtocolEval:
	default:
		return nil, fmt.Errorf("unknown protocol %q", protocol)
	}
	if allowed == nil {
		return nil, errors.New("decoder needs an allow-list")
	}
	return &Decoder{protocol: protocol, bag: bag, allowed: allowed}, nil
}

// Protocol returns the configured variant.
func (d *Decoder) Protocol() Protocol { return d.protocol }

// Decode parses msg.
func (d *Decoder) Decode(msg []byte) (wire.Command, error) {
	if len(bytes.TrimSpace(msg)) == 0 {
		return wire.Command{}, fmt.Errorf("%w: empty message", ErrIgnored)
	}
	if d.protocol == ProtocolEval {
		return d.decodeEval(string(msg))
	}
	return d.decodeStructured(msg)
}

func (d *Decoder) decodeStructured(msg []byte) (wire.Command, error) {
	var in wire.Inbound
	if err := json.Unmarshal(msg, &in); err != nil {
		return wire.Command{}, fmt.Errorf("%w: %v", ErrIgnored, err)
	}
	name := strings.TrimSpace(in.Type)
	if name == "" {
		return wire.Command{}, fmt.Errorf("%w: missing Type", ErrIgnored)
	}
	if !d.allowed(name) {
		return wire.Command{}, fmt.Errorf("%w: command %q not allowed", ErrIgnored, name)
	}

	bag, other := in.Map, in.Data
	if d.bag == wire.BagData {
		bag, other = in.Data, in.Map
	}
	if bag == nil && other != nil {
		return wire.Command{}, fmt.Errorf("%w: field bag is not %q", ErrIgnored, d.bag)
	}

	cmd := wire.Command{Name: name, Args: make(map[string]string, len(bag))}
	for key, raw := range bag {
		value, ok, err := scalar(raw)
		if err != nil {
			return wire.Command{}, fmt.Errorf("%w: field %s: %v", ErrIgnored, key, err)
		}
		if !ok {
			continue
		}
		if key == wire.FieldSelector {
			cmd.Selector = value
			continue
		}
		cmd.Args[key] = value
	}
	return cmd, nil
}

// scalar stringifies a JSON string, boolean or number. null is skipped.
func scalar(raw json.RawMessage) (string, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case '{', '[':
		return "", false, errors.New("nested values are not allowed")
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return "", false, err
		}
		return string(raw), true, nil
	}
}
