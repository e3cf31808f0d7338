// Package responder sends query results and user input upstream in the wire
// shape the deployment expects.
package responder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/QuadTriangle/domlink/internal/shellwords"
	"github.com/QuadTriangle/domlink/internal/wire"
)

// ResponseMode selects how query results are wrapped.
type ResponseMode string

const (
	ResponseRaw      ResponseMode = "raw"
	ResponseEnvelope ResponseMode = "envelope"
)

// InputMode selects how typed input is wrapped.
type InputMode string

const (
	InputRaw InputMode = "raw"
	InputCmd InputMode = "cmd"
)

// Sender transmits one text message over the open connection. It fails
// when no connection is open; nothing is queued.
type Sender interface {
	Send(ctx context.Context, data []byte) error
}

// Responder wraps and sends upstream messages.
type Responder struct {
	sender   Sender
	response ResponseMode
	input    InputMode
	log      zerolog.Logger
}

// New returns a responder. Unknown modes are rejected.
func New(sender Sender, response ResponseMode, input InputMode, log zerolog.Logger) (*Responder, error) {
	if response != ResponseRaw && response != ResponseEnvelope {
		return nil, fmt.Errorf("unknown response mode %q", response)
	}
	if input != InputRaw && input != InputCmd {
		return nil, fmt.Errorf("unknown input mode %q", input)
	}
	return &Responder{
		sender:   sender,
		response: response,
		input:    input,
		log:      log.With().Str("component", "responder").Logger(),
	}, nil
}

// EncodeResponse returns the wire form of a query result.
func (r *Responder) EncodeResponse(value string) ([]byte, error) {
	if r.response == ResponseRaw {
		return []byte(value), nil
	}
	return json.Marshal(wire.NewResponse(value))
}

// EncodeInput returns the wire form of typed input.
func (r *Responder) EncodeInput(text string) ([]byte, error) {
	if r.input == InputRaw {
		return []byte(text), nil
	}
	return json.Marshal(wire.NewInput(shellwords.Split(text)))
}

// Respond sends a query result. A closed connection drops it.
func (r *Responder) Respond(ctx context.Context, value string) error {
	data, err := r.EncodeResponse(value)
	if err != nil {
		return err
	}
	if err := r.sender.Send(ctx, data); err != nil {
		r.log.Debug().Err(err).Msg("response dropped")
		return err
	}
	return nil
}

// Submit sends typed input.
func (r *Responder) Submit(ctx context.Context, text string) error {
	data, err := r.EncodeInput(text)
	if err != nil {
		return err
	}
	if err := r.sender.Send(ctx, data); err != nil {
		r.log.Debug().Err(err).Msg("input dropped")
		return err
	}
	return nil
}
