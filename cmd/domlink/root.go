package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/QuadTriangle/domlink/internal/config"
	"github.com/QuadTriangle/domlink/internal/decode"
	"github.com/QuadTriangle/domlink/internal/dom"
	"github.com/QuadTriangle/domlink/internal/executor"
	"github.com/QuadTriangle/domlink/internal/hooks"
	"github.com/QuadTriangle/domlink/internal/page"
	"github.com/QuadTriangle/domlink/internal/plugins/origin"
	"github.com/QuadTriangle/domlink/internal/plugins/restrict"
	"github.com/QuadTriangle/domlink/internal/plugins/stats"
	"github.com/QuadTriangle/domlink/internal/registry"
	"github.com/QuadTriangle/domlink/internal/responder"
	"github.com/QuadTriangle/domlink/internal/session"
	"github.com/QuadTriangle/domlink/internal/transport"
)

// app is everything the root command wires together.
type app struct {
	log      zerolog.Logger
	in       io.Reader
	out      io.Writer
	flags    *config.Flags
	pipeline *hooks.Pipeline
	stats    *stats.Plugin
}

func newRootCmd(log zerolog.Logger, in io.Reader, out io.Writer) *cobra.Command {
	a := &app{
		log:      log,
		in:       in,
		out:      out,
		pipeline: &hooks.Pipeline{},
		stats:    stats.New(log),
	}

	// --- Register plugins ---
	// Each plugin owns its own flags and config.
	a.pipeline.RegisterPlugin(a.stats)
	a.pipeline.RegisterPlugin(restrict.New())
	a.pipeline.RegisterPlugin(origin.New())

	root := &cobra.Command{
		Use:   appName,
		Short: "Remote-controlled page client",
		Long: `domlink connects to a command server over WebSocket and lets it drive a
local HTML page: appending messages, editing attributes and styles, and asking
for values back. Lines typed on stdin are sent to the server.`,
		Version:       appVersion,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context())
		},
	}
	a.flags = config.RegisterFlags(root.PersistentFlags())
	a.pipeline.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newCommandsCmd(a))
	root.AddCommand(newTokenizeCmd())
	root.SetVersionTemplate(fmt.Sprintf("%s v%s\n", appName, appVersion))
	root.SetIn(in)
	root.SetOut(out)
	return root
}

// loadConfig resolves defaults, file, environment and flags in that order.
func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.flags.Path, os.Getenv)
	if err != nil {
		return config.Config{}, err
	}
	if err := a.flags.Apply(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// registry returns the default allow-list narrowed by enabled plugins.
func (a *app) registry() (*registry.Registry, error) {
	return registry.Default().Without(a.pipeline.DeniedCommands()...)
}

func (a *app) run(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	// Activate enabled plugins (collect hooks)
	a.pipeline.Activate()
	if names := a.pipeline.Enabled(); len(names) > 0 {
		a.log.Info().Strs("plugins", names).Msg("plugins enabled")
	}

	reg, err := a.registry()
	if err != nil {
		return err
	}

	doc, err := page.Load(ctx, cfg.Page, cfg.PageTimeout)
	if err != nil {
		return err
	}
	endpoint := cfg.ResolveEndpoint(page.SockURL(doc))
	page.SetSockURL(doc, endpoint)
	a.stats.SetDocument(doc)

	clientID, err := config.DefaultClientID()
	if err != nil {
		return err
	}
	header := http.Header{}
	for k, v := range a.pipeline.DialHeader() {
		header[k] = v
	}
	header.Set(config.ClientHeader, clientID)

	dialer, err := transport.New(cfg.Transport)
	if err != nil {
		return err
	}
	sess, err := session.New(dialer, session.Config{
		Endpoint:       endpoint,
		Header:         header,
		ReconnectDelay: cfg.ReconnectDelay,
		Status:         page.NewStatus(doc),
		Pipeline:       a.pipeline,
		Logger:         a.log,
	})
	if err != nil {
		return err
	}
	resp, err := responder.New(sess, cfg.ResponseMode, cfg.InputMode, a.log)
	if err != nil {
		return err
	}
	dec, err := decode.New(cfg.Protocol, cfg.FieldBag, reg.Has)
	if err != nil {
		return err
	}
	exec := executor.New(reg, doc, dec, resp, a.pipeline, a.log)

	a.printMessages(doc)
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(a.out, "Type a message and press Enter to send it.")
	}
	go a.readInput(ctx, doc, resp)

	a.log.Info().
		Str("endpoint", endpoint).
		Str("protocol", string(cfg.Protocol)).
		Str("transport", string(cfg.Transport)).
		Msg("starting session")

	err = sess.Run(ctx, exec.HandleMessage)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if cerr := a.stats.Close(shutdownCtx); cerr != nil {
		a.log.Warn().Err(cerr).Msg("dashboard shutdown")
	}
	a.log.Info().Msg("session closed. Goodbye!")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// printMessages echoes every node appended to the message list.
func (a *app) printMessages(doc *dom.Document) {
	list := doc.Query(page.SelectorMessages)
	if list == nil {
		a.log.Warn().Str("selector", page.SelectorMessages).Msg("page has no message list")
		return
	}
	doc.Observe(func(m dom.Mutation) {
		if m.Kind != dom.MutationAppend || m.Added == nil || !m.Target.Is(list) {
			return
		}
		if text := strings.TrimSpace(m.Added.Text()); text != "" {
			fmt.Fprintln(a.out, text)
		}
	})
}

// readInput submits each stdin line through the message box.
func (a *app) readInput(ctx context.Context, doc *dom.Document, resp *responder.Responder) {
	sc := bufio.NewScanner(a.in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := page.Send(ctx, doc, resp, line); err != nil {
			a.log.Warn().Err(err).Msg("input not sent")
		}
	}
}
