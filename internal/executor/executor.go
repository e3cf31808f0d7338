// Package executor applies decoded commands to the document.
package executor

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/QuadTriangle/domlink/internal/decode"
	"github.com/QuadTriangle/domlink/internal/dom"
	"github.com/QuadTriangle/domlink/internal/hooks"
	"github.com/QuadTriangle/domlink/internal/registry"
	"github.com/QuadTriangle/domlink/internal/responder"
	"github.com/QuadTriangle/domlink/internal/wire"
)

// Executor resolves targets and dispatches commands through the registry.
type Executor struct {
	reg      *registry.Registry
	doc      *dom.Document
	decoder  *decode.Decoder
	resp     *responder.Responder
	pipeline *hooks.Pipeline
	log      zerolog.Logger
}

// New returns an executor. pipeline may be nil.
func New(reg *registry.Registry, doc *dom.Document, decoder *decode.Decoder, resp *responder.Responder, pipeline *hooks.Pipeline, log zerolog.Logger) *Executor {
	if pipeline == nil {
		pipeline = &hooks.Pipeline{}
	}
	return &Executor{
		reg:      reg,
		doc:      doc,
		decoder:  decoder,
		resp:     resp,
		pipeline: pipeline,
		log:      log.With().Str("component", "executor").Logger(),
	}
}

// Document returns the document commands are applied to.
func (e *Executor) Document() *dom.Document { return e.doc }

// HandleMessage decodes one inbound message and executes it. Messages that
// fail to decode are dropped without a reply.
func (e *Executor) HandleMessage(ctx context.Context, msg []byte) {
	cmd, err := e.decoder.Decode(msg)
	if err != nil {
		if errors.Is(err, decode.ErrIgnored) {
			e.log.Debug().Err(err).Msg("message ignored")
		} else {
			e.log.Warn().Err(err).Msg("message dropped")
		}
		e.pipeline.RunAfterExecute(wire.Command{}, hooks.Result{Outcome: hooks.OutcomeIgnored, Err: err})
		return
	}
	e.Execute(ctx, cmd)
}

// Execute runs cmd. Names outside the registry and selectors that match
// nothing are no-ops. The returned result is also passed to AfterExecute hooks.
func (e *Executor) Execute(ctx context.Context, cmd wire.Command) hooks.Result {
	cmd = e.pipeline.RunBeforeExecute(cmd)
	res := e.execute(ctx, cmd)
	e.pipeline.RunAfterExecute(cmd, res)
	return res
}

func (e *Executor) execute(ctx context.Context, cmd wire.Command) hooks.Result {
	log := e.log.With().Str("command", cmd.Name).Str("selector", cmd.Selector).Logger()

	h, ok := e.reg.Lookup(cmd.Name)
	if !ok {
		log.Debug().Msg("command not allowed")
		return hooks.Result{Outcome: hooks.OutcomeIgnored, Err: registry.ErrUnknownCommand}
	}

	var el *dom.Element
	if h.Target != registry.TargetNone {
		el = e.doc.Query(cmd.Selector)
		if el == nil && h.Target == registry.TargetRequired {
			log.Debug().Msg("no element matches selector")
			return hooks.Result{Outcome: hooks.OutcomeNoTarget}
		}
	}

	out, err := h.Run(e.doc, el, cmd)
	if err != nil {
		if errors.Is(err, dom.ErrInvalidName) || errors.Is(err, dom.ErrInvalidStyle) {
			log.Warn().Err(err).Msg("command rejected")
		} else {
			log.Error().Err(err).Msg("command failed")
		}
		return hooks.Result{Outcome: hooks.OutcomeFailed, Err: err}
	}

	res := hooks.Result{Outcome: hooks.OutcomeExecuted}
	if h.Query && e.resp != nil {
		if err := e.resp.Respond(ctx, out); err != nil {
			log.Debug().Err(err).Msg("response not sent")
			res.Err = err
		} else {
			res.Responded = true
		}
	}
	return res
}
