// Package httpapi exposes the newsroom over HTTP: session control,
// archive reads, exports, and a live watch websocket.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/techronicle/newsroom/internal/articles"
	"github.com/techronicle/newsroom/internal/config"
	"github.com/techronicle/newsroom/internal/newsroom"
	"github.com/techronicle/newsroom/internal/observability"
	"github.com/techronicle/newsroom/internal/protocol"
	"github.com/techronicle/newsroom/internal/store"
	"github.com/techronicle/newsroom/internal/transcript"
)

// SessionRunner starts editorial sessions. The newsroom service
// satisfies it.
type SessionRunner interface {
	StartSession(ctx context.Context, items []articles.Item) (*newsroom.Run, error)
}

type Server struct {
	cfg      config.Config
	runner   SessionRunner
	supplier articles.Supplier
	archive  store.Store
	metrics  *observability.Metrics
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	live map[string]*newsroom.Run
}

func New(cfg config.Config, runner SessionRunner, supplier articles.Supplier, archive store.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		runner:   runner,
		supplier: supplier,
		archive:  archive,
		metrics:  metrics,
		live:     make(map[string]*newsroom.Run),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the
				// same origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})

	r.Post("/v1/sessions", s.handleCreateSession)
	r.Get("/v1/sessions", s.handleListSessions)
	r.Get("/v1/sessions/{id}", s.handleGetSession)
	r.Get("/v1/sessions/{id}/export", s.handleExportSession)
	r.Get("/v1/sessions/{id}/watch", s.handleWatchSession)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ready",
		"live_sessions": s.liveCount(),
	})
}

type createSessionRequest struct {
	Items    []articles.Item `json:"items,omitempty"`
	MaxItems int             `json:"max_items,omitempty"`
}

type createSessionResponse struct {
	SessionID string          `json:"session_id"`
	StartedAt time.Time       `json:"started_at"`
	Items     []articles.Item `json:"items"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	maxItems := req.MaxItems
	if maxItems <= 0 {
		maxItems = s.cfg.MaxItems
	}

	items := req.Items
	if len(items) == 0 {
		if s.supplier == nil {
			respondError(w, http.StatusBadRequest, "no_items", "no items given and no supplier configured")
			return
		}
		collected, err := s.supplier.Collect(r.Context(), maxItems)
		if err != nil {
			respondError(w, http.StatusBadGateway, "collect_failed", err.Error())
			return
		}
		items = collected
	}

	// Session lifetime is independent of this request.
	run, err := s.runner.StartSession(context.Background(), items)
	if err != nil {
		if errors.Is(err, newsroom.ErrNoItems) {
			respondError(w, http.StatusUnprocessableEntity, "no_items", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "start_failed", err.Error())
		return
	}

	s.mu.Lock()
	s.live[run.ID()] = run
	s.mu.Unlock()
	go func() {
		<-run.Done()
		s.mu.Lock()
		delete(s.live, run.ID())
		s.mu.Unlock()
	}()

	respondJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: run.ID(),
		StartedAt: run.Record.StartedAt(),
		Items:     run.Record.Items(),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	heads, err := s.archive.ListSessions(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sessions": heads,
		"live":     s.liveCount(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.lookupSummary(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "session_not_found", "unknown session id")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	format, err := transcript.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}
	summary, ok := s.lookupSummary(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "session_not_found", "unknown session id")
		return
	}
	rendered, err := transcript.Export(summary, format)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}
	switch format {
	case transcript.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case transcript.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendered)
}

func (s *Server) handleWatchSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	run, isLive := s.live[id]
	s.mu.RUnlock()

	var snapshot transcript.Summary
	var events <-chan transcript.Event
	var unsubscribe func()
	if isLive {
		// Subscribe before the snapshot so no event between the two is
		// lost; duplicates of snapshot turns are filtered below.
		events, unsubscribe = run.Record.Subscribe(256)
		defer unsubscribe()
		snapshot = run.Record.Summary()
	} else {
		archived, ok := s.lookupSummary(r.Context(), id)
		if !ok {
			respondError(w, http.StatusNotFound, "session_not_found", "unknown session id")
			return
		}
		snapshot = archived
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Watchers are read-only; the read loop only notices disconnects.
	go func() {
		conn.SetReadLimit(1 << 16)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	if err := s.writeWatchMessage(conn, protocol.Snapshot{
		Type:      protocol.TypeSnapshot,
		SessionID: id,
		Summary:   snapshot,
	}); err != nil {
		return
	}
	if !isLive || snapshot.Finalized {
		// Nothing more will happen; leave the socket to the client.
		<-ctx.Done()
		return
	}

	seenSeq := 0
	if n := len(snapshot.Turns); n > 0 {
		seenSeq = snapshot.Turns[n-1].Seq
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type == transcript.EventTurnAppended && ev.Turn != nil && ev.Turn.Seq <= seenSeq {
				continue
			}
			msg := protocol.FromEvent(id, ev)
			if msg == nil {
				continue
			}
			if err := s.writeWatchMessage(conn, msg); err != nil {
				return
			}
			s.metrics.WatchEvents.WithLabelValues(string(ev.Type)).Inc()
			if ev.Type == transcript.EventSessionFinalized {
				return
			}
		}
	}
}

func (s *Server) writeWatchMessage(conn *websocket.Conn, msg any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(msg)
}

// lookupSummary prefers the live record so mid-session reads see the
// current consistent prefix, and falls back to the archive.
func (s *Server) lookupSummary(ctx context.Context, id string) (transcript.Summary, bool) {
	if strings.TrimSpace(id) == "" {
		return transcript.Summary{}, false
	}
	s.mu.RLock()
	run, ok := s.live[id]
	s.mu.RUnlock()
	if ok {
		return run.Record.Summary(), true
	}
	summary, err := s.archive.GetSession(ctx, id)
	if err != nil {
		return transcript.Summary{}, false
	}
	return summary, true
}

func (s *Server) liveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.live)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
