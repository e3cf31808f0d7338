// Package session keeps one WebSocket connection to the command server open,
// reconnecting after a fixed delay whenever it closes.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/QuadTriangle/domlink/internal/hooks"
	"github.com/QuadTriangle/domlink/internal/transport"
)

// DefaultReconnectDelay is the wait between a close and the next attempt.
const DefaultReconnectDelay = 3000 * time.Millisecond

// ErrNotOpen is returned by Send when no connection is open.
var ErrNotOpen = errors.New("connection not open")

// State of the connection manager.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosedReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosedReconnecting:
		return "closed-reconnecting"
	}
	return "unknown"
}

// StatusSink is told about connection transitions. Disconnected is called
// once per outage no matter how many attempts fail in between.
type StatusSink interface {
	Connected()
	Disconnected()
}

// MessageHandler processes one inbound message. Messages are handled one at
// a time in arrival order.
type MessageHandler func(ctx context.Context, msg []byte)

// Config holds the session settings.
type Config struct {
	Endpoint       string
	Header         http.Header
	ReconnectDelay time.Duration
	Status         StatusSink
	Pipeline       *hooks.Pipeline
	Logger         zerolog.Logger
}

// Session is the connection manager. Create with New, then call Run.
type Session struct {
	dialer   transport.Dialer
	endpoint string
	header   http.Header
	delay    time.Duration
	status   StatusSink
	pipeline *hooks.Pipeline
	log      zerolog.Logger

	// after schedules the reconnect; swapped in tests.
	after func(time.Duration) <-chan time.Time

	mu           sync.Mutex
	conn         transport.Conn
	connID       string
	state        State
	disconnected bool

	writeMu sync.Mutex
}

// New returns a session in the Connecting state.
func New(dialer transport.Dialer, cfg Config) (*Session, error) {
	if dialer == nil {
		return nil, errors.New("session needs a dialer")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("session needs an endpoint")
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	p := cfg.Pipeline
	if p == nil {
		p = &hooks.Pipeline{}
	}
	return &Session{
		dialer:   dialer,
		endpoint: cfg.Endpoint,
		header:   cfg.Header,
		delay:    delay,
		status:   cfg.Status,
		pipeline: p,
		log:      cfg.Logger.With().Str("component", "session").Str("endpoint", cfg.Endpoint).Logger(),
		after:    time.After,
	}, nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConnID returns the id of the open connection, or "".
func (s *Session) ConnID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return ""
	}
	return s.connID
}

// Run connects and serves until ctx is cancelled, then returns ctx.Err().
// Every close schedules exactly one reconnect attempt after the fixed delay.
func (s *Session) Run(ctx context.Context, handle MessageHandler) error {
	if handle == nil {
		return errors.New("session needs a message handler")
	}
	for {
		if ctx.Err() != nil {
			s.shutdown()
			return ctx.Err()
		}

		err := s.connectAndServe(ctx, handle)
		if ctx.Err() != nil {
			s.shutdown()
			return ctx.Err()
		}
		s.closed(err)

		s.log.Info().Err(err).Dur("retry_in", s.delay).Msg("connection closed, retrying")
		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()
		case <-s.after(s.delay):
		}
	}
}

func (s *Session) connectAndServe(ctx context.Context, handle MessageHandler) error {
	s.setState(StateConnecting)
	s.log.Debug().Msg("connecting")

	conn, err := s.dialer.Dial(ctx, s.endpoint, s.header)
	if err != nil {
		return err
	}
	id := s.open(conn)
	defer s.release(conn)

	s.log.Info().Str("conn_id", id).Msg("connection established")
	if s.status != nil {
		s.status.Connected()
	}
	s.pipeline.NotifyConnect(s.endpoint, id)

	for {
		msg, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		s.pipeline.NotifyMessage(s.endpoint)
		handle(ctx, msg)
	}
}

// open installs conn as the live connection, closing any previous one.
func (s *Session) open(conn transport.Conn) string {
	s.mu.Lock()
	prev := s.conn
	s.conn = conn
	s.connID = uuid.NewString()
	s.state = StateOpen
	s.disconnected = false
	id := s.connID
	s.mu.Unlock()

	if prev != nil && prev != conn {
		prev.Close()
	}
	return id
}

func (s *Session) release(conn transport.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	conn.Close()
}

// closed records an outage and reports it once.
func (s *Session) closed(err error) {
	s.mu.Lock()
	s.state = StateClosedReconnecting
	first := !s.disconnected
	s.disconnected = true
	s.mu.Unlock()

	s.pipeline.NotifyDisconnect(s.endpoint, err)
	if first && s.status != nil {
		s.status.Disconnected()
	}
}

func (s *Session) shutdown() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.state = StateClosedReconnecting
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	s.log.Info().Msg("session stopped")
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Send writes one text message on the open connection. Nothing is queued
// while disconnected.
func (s *Session) Send(ctx context.Context, data []byte) error {
	s.mu.Lock()
	conn := s.conn
	open := s.state == StateOpen
	s.mu.Unlock()
	if !open || conn == nil {
		return ErrNotOpen
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.Write(ctx, data)
}
