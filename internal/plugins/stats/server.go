package stats

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/QuadTriangle/domlink/internal/dom"
)

//go:embed index.html
var dashboardHTML embed.FS

// JSON response types matching what the dashboard expects

type commandJSON struct {
	Name       string  `json:"name"`
	Executed   int     `json:"executed"`
	NoTarget   int     `json:"no_target"`
	Failed     int     `json:"failed"`
	Responses  int     `json:"responses"`
	AvgLatency float64 `json:"avg_latency"`
	MaxLatency float64 `json:"max_latency"`
	LastSeen   int64   `json:"last_seen"`
}

type entryJSON struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Selector  string  `json:"selector,omitempty"`
	Outcome   string  `json:"outcome"`
	Responded bool    `json:"responded"`
	Error     string  `json:"error,omitempty"`
	LatencyMs float64 `json:"latency_ms"`
	CreatedAt int64   `json:"created_at"`
}

type connectionJSON struct {
	ConnID         string `json:"conn_id"`
	Endpoint       string `json:"endpoint"`
	ConnectedAt    int64  `json:"connected_at"`
	DisconnectedAt int64  `json:"disconnected_at,omitempty"`
	Messages       int    `json:"messages"`
	Error          string `json:"error,omitempty"`
}

type summaryJSON struct {
	Connected     bool    `json:"connected"`
	Connections   int     `json:"connections"`
	TotalCommands int     `json:"total_commands"`
	TotalFailed   int     `json:"total_failed"`
	TotalNoTarget int     `json:"total_no_target"`
	Ignored       int     `json:"ignored"`
	Responses     int     `json:"responses"`
	AvgLatency    float64 `json:"avg_latency"`
}

// Server serves the stats API and the live document locally.
type Server struct {
	store    *Store
	doc      *dom.Document
	listener net.Listener
	srv      *http.Server
	log      zerolog.Logger
}

// StartServer starts the local stats HTTP server on addr.
// doc may be nil, in which case /api/document returns 404.
func StartServer(store *Store, doc *dom.Document, addr string, log zerolog.Logger) (*Server, error) {
	mux := http.NewServeMux()
	s := &Server{store: store, doc: doc, log: log}

	mux.HandleFunc("/api/stats/commands", s.handleCommands)
	mux.HandleFunc("/api/stats/recent", s.handleRecent)
	mux.HandleFunc("/api/stats/connections", s.handleConnections)
	mux.HandleFunc("/api/stats/summary", s.handleSummary)
	mux.HandleFunc("/api/document", s.handleDocument)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		data, _ := dashboardHTML.ReadFile("index.html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.listener = ln

	s.srv = &http.Server{Handler: corsMiddleware(mux)}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("dashboard server error")
		}
	}()

	return s, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	cmds := make([]commandJSON, 0, len(snap))
	for _, cs := range snap {
		avg := float64(0)
		if n := cs.Executed + cs.NoTarget + cs.Failed; n > 0 {
			avg = ms(cs.TotalLatency) / float64(n)
		}
		cmds = append(cmds, commandJSON{
			Name:       cs.Name,
			Executed:   cs.Executed,
			NoTarget:   cs.NoTarget,
			Failed:     cs.Failed,
			Responses:  cs.Responses,
			AvgLatency: avg,
			MaxLatency: ms(cs.MaxLatency),
			LastSeen:   cs.LastSeen.Unix(),
		})
	}
	writeJSON(w, map[string]any{"commands": cmds})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	if limit > 500 {
		limit = 500
	}

	name := r.URL.Query().Get("name")
	entries := s.store.RecentLogs(limit)

	// Newest first, filtered by command name if provided
	out := make([]entryJSON, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if name != "" && e.Name != name {
			continue
		}
		out = append(out, entryJSON{
			ID:        e.ID,
			Name:      e.Name,
			Selector:  e.Selector,
			Outcome:   string(e.Outcome),
			Responded: e.Responded,
			Error:     e.Error,
			LatencyMs: ms(e.Latency),
			CreatedAt: e.Timestamp.Unix(),
		})
	}
	writeJSON(w, map[string]any{"commands": out})
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	conns := s.store.Connections()
	out := make([]connectionJSON, 0, len(conns))
	for _, c := range conns {
		cj := connectionJSON{
			ConnID:      c.ConnID,
			Endpoint:    c.Endpoint,
			ConnectedAt: c.ConnectedAt.Unix(),
			Messages:    c.Messages,
			Error:       c.Error,
		}
		if !c.DisconnectedAt.IsZero() {
			cj.DisconnectedAt = c.DisconnectedAt.Unix()
		}
		out = append(out, cj)
	}
	writeJSON(w, map[string]any{"connections": out})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var sum summaryJSON
	var totalLatency float64
	for _, cs := range s.store.Snapshot() {
		sum.TotalCommands += cs.Executed + cs.NoTarget + cs.Failed
		sum.TotalFailed += cs.Failed
		sum.TotalNoTarget += cs.NoTarget
		sum.Responses += cs.Responses
		totalLatency += ms(cs.TotalLatency)
	}
	if sum.TotalCommands > 0 {
		sum.AvgLatency = totalLatency / float64(sum.TotalCommands)
	}
	sum.Ignored = s.store.Ignored()
	conns := s.store.Connections()
	sum.Connections = len(conns)
	if n := len(conns); n > 0 && conns[n-1].DisconnectedAt.IsZero() {
		sum.Connected = true
	}
	writeJSON(w, map[string]any{"summary": sum})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	if s.doc == nil {
		http.NotFound(w, r)
		return
	}
	markup, err := s.doc.Render()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(markup))
}
