package stats

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/QuadTriangle/domlink/internal/dom"
	"github.com/QuadTriangle/domlink/internal/hooks"
	"github.com/QuadTriangle/domlink/internal/wire"
)

// CommandEntry is a single handled command held in memory.
type CommandEntry struct {
	ID        int
	Name      string
	Selector  string
	Outcome   hooks.Outcome
	Responded bool
	Error     string
	Latency   time.Duration
	Timestamp time.Time
}

// CommandStats holds aggregate stats for one command name.
type CommandStats struct {
	Name         string
	Executed     int
	NoTarget     int
	Failed       int
	Responses    int
	TotalLatency time.Duration
	MaxLatency   time.Duration
	LastSeen     time.Time
}

// ConnectionEntry records one connection to the endpoint.
type ConnectionEntry struct {
	ConnID         string
	Endpoint       string
	ConnectedAt    time.Time
	DisconnectedAt time.Time
	Messages       int
	Error          string
}

// Store is the in-memory stats store. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	commands map[string]*CommandStats
	ignored  int
	logs     []CommandEntry // ring buffer
	maxLogs  int
	nextID   int
	conns    []ConnectionEntry
	maxConns int
}

func NewStore(maxLogs int) *Store {
	return &Store{
		commands: make(map[string]*CommandStats),
		maxLogs:  maxLogs,
		maxConns: 100,
	}
}

func (s *Store) RecordConnect(endpoint, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) >= s.maxConns {
		s.conns = s.conns[1:]
	}
	s.conns = append(s.conns, ConnectionEntry{
		ConnID:      connID,
		Endpoint:    endpoint,
		ConnectedAt: time.Now(),
	})
}

// RecordDisconnect closes the open connection entry. Failed dials have no
// entry and are not recorded.
func (s *Store) RecordDisconnect(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.current()
	if c == nil {
		return
	}
	c.DisconnectedAt = time.Now()
	if err != nil {
		c.Error = err.Error()
	}
}

func (s *Store) RecordMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.current(); c != nil {
		c.Messages++
	}
}

func (s *Store) current() *ConnectionEntry {
	if len(s.conns) == 0 {
		return nil
	}
	c := &s.conns[len(s.conns)-1]
	if !c.DisconnectedAt.IsZero() {
		return nil
	}
	return c
}

func (s *Store) RecordCommand(cmd wire.Command, res hooks.Result, latency time.Duration) {
	entry := CommandEntry{
		Name:      cmd.Name,
		Selector:  cmd.Selector,
		Outcome:   res.Outcome,
		Responded: res.Responded,
		Latency:   latency,
		Timestamp: time.Now(),
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID

	// Ring buffer: keep last maxLogs entries
	if len(s.logs) >= s.maxLogs {
		s.logs = append(s.logs[1:], entry)
	} else {
		s.logs = append(s.logs, entry)
	}

	// Ignored commands are counted but never get a per-name row, so a server
	// cannot grow the map with arbitrary names.
	if res.Outcome == hooks.OutcomeIgnored {
		s.ignored++
		return
	}

	cs, ok := s.commands[cmd.Name]
	if !ok {
		cs = &CommandStats{Name: cmd.Name}
		s.commands[cmd.Name] = cs
	}
	cs.LastSeen = entry.Timestamp
	cs.TotalLatency += latency
	if latency > cs.MaxLatency {
		cs.MaxLatency = latency
	}
	switch res.Outcome {
	case hooks.OutcomeExecuted:
		cs.Executed++
	case hooks.OutcomeNoTarget:
		cs.NoTarget++
	case hooks.OutcomeFailed:
		cs.Failed++
	}
	if res.Responded {
		cs.Responses++
	}
}

// Snapshot returns a copy of all command stats sorted by name.
func (s *Store) Snapshot() []CommandStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CommandStats, 0, len(s.commands))
	for _, cs := range s.commands {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Ignored returns the number of dropped messages.
func (s *Store) Ignored() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ignored
}

// Connections returns the connection history, oldest first.
func (s *Store) Connections() []ConnectionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ConnectionEntry(nil), s.conns...)
}

// RecentLogs returns the last n command entries.
func (s *Store) RecentLogs(n int) []CommandEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.logs) {
		n = len(s.logs)
	}
	out := make([]CommandEntry, n)
	copy(out, s.logs[len(s.logs)-n:])
	return out
}

// --- Plugin wiring ---

// Plugin implements hooks.Plugin for in-memory stats collection.
// Controlled by a single --dashboard-port flag: port > 0 enables stats + dashboard, 0 disables everything.
type Plugin struct {
	dashboardPort int
	store         *Store
	server        *Server
	doc           *dom.Document
	log           zerolog.Logger
	mu            sync.Mutex
}

func New(log zerolog.Logger) *Plugin {
	return &Plugin{
		store: NewStore(1000),
		log:   log.With().Str("plugin", "stats").Logger(),
	}
}

func (p *Plugin) Name() string { return "stats" }
func (p *Plugin) RegisterFlags(fs *pflag.FlagSet) {
	fs.IntVar(&p.dashboardPort, "dashboard-port", 0, "Stats dashboard port (0 to disable stats entirely)")
}
func (p *Plugin) Enabled() bool            { return p.dashboardPort > 0 }
func (p *Plugin) DialHeader() http.Header  { return nil }
func (p *Plugin) DeniedCommands() []string { return nil }
func (p *Plugin) CommandHooks() []hooks.CommandHook {
	return []hooks.CommandHook{&cmdHook{store: p.store}}
}
func (p *Plugin) ConnectionHooks() []hooks.ConnectionHook {
	return []hooks.ConnectionHook{&connHook{store: p.store, plugin: p}}
}

// Store returns the underlying store for external consumers.
func (p *Plugin) Store() *Store { return p.store }

// SetDocument gives the dashboard the live document to serve.
func (p *Plugin) SetDocument(doc *dom.Document) {
	p.mu.Lock()
	p.doc = doc
	p.mu.Unlock()
}

// Close stops the dashboard server, if running.
func (p *Plugin) Close(ctx context.Context) error {
	p.mu.Lock()
	srv := p.server
	p.server = nil
	p.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Close(ctx)
}

// startDashboard starts the local HTTP server for the dashboard on first connect.
func (p *Plugin) startDashboard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dashboardPort == 0 || p.server != nil {
		return
	}
	srv, err := StartServer(p.store, p.doc, fmt.Sprintf("127.0.0.1:%d", p.dashboardPort), p.log)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to start dashboard server")
		return
	}
	p.server = srv
	p.log.Info().Str("addr", "http://"+srv.Addr()).Msg("dashboard API listening")
}

// --- Hooks ---

// cmdHook times commands. Commands run one at a time on the session's read
// goroutine, so a single pending start time is enough.
type cmdHook struct {
	store *Store
	mu    sync.Mutex
	start time.Time
}

func (h *cmdHook) BeforeExecute(cmd wire.Command) wire.Command {
	h.mu.Lock()
	h.start = time.Now()
	h.mu.Unlock()
	return cmd
}

func (h *cmdHook) AfterExecute(cmd wire.Command, res hooks.Result) {
	h.mu.Lock()
	var latency time.Duration
	if !h.start.IsZero() {
		latency = time.Since(h.start)
		h.start = time.Time{}
	}
	h.mu.Unlock()

	h.store.RecordCommand(cmd, res, latency)
}

type connHook struct {
	store  *Store
	plugin *Plugin
}

func (h *connHook) OnConnect(endpoint, connID string) {
	h.store.RecordConnect(endpoint, connID)
	h.plugin.startDashboard()
}

func (h *connHook) OnDisconnect(_ string, err error) {
	h.store.RecordDisconnect(err)
}

func (h *connHook) OnMessage(string) {
	h.store.RecordMessage()
}
