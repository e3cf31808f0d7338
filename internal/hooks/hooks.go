package hooks

import (
	"net/http"

	"github.com/spf13/pflag"

	"github.com/QuadTriangle/domlink/internal/wire"
)

// Outcome of one inbound command.
type Outcome string

const (
	OutcomeExecuted Outcome = "executed"
	OutcomeIgnored  Outcome = "ignored"   // failed to decode or not allowed
	OutcomeNoTarget Outcome = "no-target" // selector matched nothing
	OutcomeFailed   Outcome = "failed"
)

// Result describes how a command was handled.
type Result struct {
	Outcome   Outcome
	Responded bool
	Err       error
}

// --- Hook interfaces ---

// CommandHook intercepts commands flowing into the executor. BeforeExecute
// runs before the allow-list lookup, so a rewritten command is still gated.
type CommandHook interface {
	BeforeExecute(cmd wire.Command) wire.Command
	AfterExecute(cmd wire.Command, res Result)
}

// ConnectionHook observes session lifecycle events.
type ConnectionHook interface {
	OnConnect(endpoint, connID string)
	OnDisconnect(endpoint string, err error)
	OnMessage(endpoint string)
}

// NoOpCommandHook is a convenience embed for hooks that only need one method.
type NoOpCommandHook struct{}

func (NoOpCommandHook) BeforeExecute(cmd wire.Command) wire.Command { return cmd }
func (NoOpCommandHook) AfterExecute(_ wire.Command, _ Result)       {}

// NoOpConnectionHook is a convenience embed for hooks that only need one method.
type NoOpConnectionHook struct{}

func (NoOpConnectionHook) OnConnect(_, _ string)          {}
func (NoOpConnectionHook) OnDisconnect(_ string, _ error) {}
func (NoOpConnectionHook) OnMessage(_ string)             {}

// --- Plugin interface ---

// Plugin is the self-contained unit of optional functionality.
// Each plugin registers its own CLI flags, decides if it's active,
// and contributes dial headers, allow-list narrowing and hooks.
type Plugin interface {
	// Name returns a short identifier (e.g. "stats", "origin").
	Name() string
	// RegisterFlags is called before flags are parsed.
	RegisterFlags(fs *pflag.FlagSet)
	// Enabled returns true if the plugin should activate (check your flags).
	Enabled() bool
	// DialHeader returns headers to add to the WebSocket handshake, or nil.
	DialHeader() http.Header
	// DeniedCommands returns command names to remove from the allow-list.
	DeniedCommands() []string
	// CommandHooks returns command hooks to add to the pipeline, or nil.
	CommandHooks() []CommandHook
	// ConnectionHooks returns connection hooks to add to the pipeline, or nil.
	ConnectionHooks() []ConnectionHook
}

// --- Pipeline ---

// Pipeline runs registered hooks in order. Zero-value is ready to use.
type Pipeline struct {
	plugins   []Plugin
	cmdHooks  []CommandHook
	connHooks []ConnectionHook
}

// RegisterPlugin adds a plugin. Call before flags are parsed.
func (p *Pipeline) RegisterPlugin(pl Plugin) {
	p.plugins = append(p.plugins, pl)
}

// RegisterFlags calls RegisterFlags on all plugins.
func (p *Pipeline) RegisterFlags(fs *pflag.FlagSet) {
	for _, pl := range p.plugins {
		pl.RegisterFlags(fs)
	}
}

// Activate checks which plugins are enabled after flag parsing,
// and collects their hooks into the pipeline.
func (p *Pipeline) Activate() {
	for _, pl := range p.plugins {
		if !pl.Enabled() {
			continue
		}
		p.cmdHooks = append(p.cmdHooks, pl.CommandHooks()...)
		p.connHooks = append(p.connHooks, pl.ConnectionHooks()...)
	}
}

// Enabled returns the names of the active plugins.
func (p *Pipeline) Enabled() []string {
	var names []string
	for _, pl := range p.plugins {
		if pl.Enabled() {
			names = append(names, pl.Name())
		}
	}
	return names
}

// DialHeader merges headers from all enabled plugins. Later plugins win.
func (p *Pipeline) DialHeader() http.Header {
	merged := http.Header{}
	for _, pl := range p.plugins {
		if !pl.Enabled() {
			continue
		}
		for k, v := range pl.DialHeader() {
			merged[http.CanonicalHeaderKey(k)] = v
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// DeniedCommands collects command names every enabled plugin wants removed.
func (p *Pipeline) DeniedCommands() []string {
	seen := map[string]bool{}
	var out []string
	for _, pl := range p.plugins {
		if !pl.Enabled() {
			continue
		}
		for _, name := range pl.DeniedCommands() {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func (p *Pipeline) AddCommandHook(h CommandHook)       { p.cmdHooks = append(p.cmdHooks, h) }
func (p *Pipeline) AddConnectionHook(h ConnectionHook) { p.connHooks = append(p.connHooks, h) }

func (p *Pipeline) RunBeforeExecute(cmd wire.Command) wire.Command {
	for _, h := range p.cmdHooks {
		cmd = h.BeforeExecute(cmd)
	}
	return cmd
}

func (p *Pipeline) RunAfterExecute(cmd wire.Command, res Result) {
	for _, h := range p.cmdHooks {
		h.AfterExecute(cmd, res)
	}
}

func (p *Pipeline) NotifyConnect(endpoint, connID string) {
	for _, h := range p.connHooks {
		h.OnConnect(endpoint, connID)
	}
}

func (p *Pipeline) NotifyDisconnect(endpoint string, err error) {
	for _, h := range p.connHooks {
		h.OnDisconnect(endpoint, err)
	}
}

func (p *Pipeline) NotifyMessage(endpoint string) {
	for _, h := range p.connHooks {
		h.OnMessage(endpoint)
	}
}
