// Package api provides the HTTP API for observing a run.
// GET endpoints are public (read-only observation of published snapshots).
// POST endpoints require a bearer token (admin pacing control).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/talgya/space-travel/internal/engine"
	"github.com/talgya/space-travel/internal/persistence"
)

// maxEvents bounds the event backlog kept for /api/v1/events.
const maxEvents = 500

// Pacer is the part of the engine the admin endpoints drive.
type Pacer interface {
	Speed() float64
	SetSpeed(float64)
}

// Journal is the part of the run journal the history endpoints read.
type Journal interface {
	History(limit int) ([]persistence.TickRecord, error)
	Runs(limit int) ([]persistence.Run, error)
	VehicleHistory(name string) ([]persistence.VehicleRecord, error)
	RecentEvents(limit int, category string) ([]engine.Event, error)
}

// Server serves published snapshots over HTTP. It never reads simulation
// state directly; the engine pushes each snapshot through Publish.
type Server struct {
	Eng         Pacer
	DB          Journal // nil = history disabled
	Port        int
	AdminKey    string   // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string // Allowed browser origins

	mu      sync.RWMutex
	latest  engine.Snapshot
	events  []engine.Event
	trimmed bool // events has dropped older entries
	hub     *Hub
	history *RateLimiter

	upgrader websocket.Upgrader
}

// NewServer creates a server with an empty snapshot.
func NewServer(eng Pacer, db Journal, port int, adminKey string, origins []string) *Server {
	s := &Server{
		Eng:         eng,
		DB:          db,
		Port:        port,
		AdminKey:    adminKey,
		CORSOrigins: origins,
		hub:         NewHub(),
		history:     NewRateLimiter(2, 10),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Publish makes snap the current view and streams it to subscribers.
// Safe to call from the engine goroutine.
func (s *Server) Publish(snap engine.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.events = append(s.events, snap.Events...)
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
		s.trimmed = true
	}
	s.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		slog.Error("snapshot encode failed", "tick", snap.Tick, "error", err)
		return
	}
	s.hub.Broadcast(payload)
}

func (s *Server) snapshot() engine.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/planets", s.handlePlanets)
	mux.HandleFunc("/api/v1/vehicles", s.handleVehicles)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/history", RateLimitMiddleware(s.history, s.handleHistory))
	mux.HandleFunc("/api/v1/runs", RateLimitMiddleware(s.history, s.handleRuns))
	mux.HandleFunc("GET /api/v1/vehicles/{name}/history", RateLimitMiddleware(s.history, s.handleVehicleHistory))
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	c := cors.New(cors.Options{
		AllowedOrigins: s.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(mux)
}

// Start serves the API until ctx is done.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)

	go func() {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.history.Cleanup(time.Hour)
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "", "history", s.DB != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.CORSOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no SPACETRAVEL_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	writeJSON(w, map[string]any{
		"tick":     snap.Tick,
		"done":     snap.Done,
		"speed":    s.Eng.Speed(),
		"stats":    snap.Stats,
		"alive":    snap.Stats.Alive(),
		"problems": snap.Problems,
	})
}

func (s *Server) handlePlanets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.snapshot().Planets)
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles := s.snapshot().Vehicles
	if status := r.URL.Query().Get("status"); status != "" {
		var filtered []engine.VehicleView
		for _, v := range vehicles {
			if strings.EqualFold(v.Status, status) {
				filtered = append(filtered, v)
			}
		}
		vehicles = filtered
	}
	writeJSON(w, vehicles)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50, maxEvents)

	s.mu.RLock()
	events := s.events
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	out := append([]engine.Event(nil), events[start:]...)
	trimmed := s.trimmed
	s.mu.RUnlock()

	// The backlog lost older events; the journal still has them.
	if trimmed && len(out) < limit && s.DB != nil {
		journaled, err := s.DB.RecentEvents(limit, r.URL.Query().Get("category"))
		if err != nil {
			slog.Error("journal events query failed", "error", err)
		} else {
			out = make([]engine.Event, 0, len(journaled))
			for i := len(journaled) - 1; i >= 0; i-- {
				out = append(out, journaled[i])
			}
		}
	}

	writeJSON(w, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled (no SPACETRAVEL_JOURNAL_PATH set)", http.StatusServiceUnavailable)
		return
	}
	ticks, err := s.DB.History(queryLimit(r, 100, 1000))
	if err != nil {
		slog.Error("history query failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, ticks)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled (no SPACETRAVEL_JOURNAL_PATH set)", http.StatusServiceUnavailable)
		return
	}
	runs, err := s.DB.Runs(queryLimit(r, 20, 100))
	if err != nil {
		slog.Error("runs query failed", "error", err)
		http.Error(w, "runs unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

func (s *Server) handleVehicleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled (no SPACETRAVEL_JOURNAL_PATH set)", http.StatusServiceUnavailable)
		return
	}
	name := r.PathValue("name")
	known := false
	for _, v := range s.snapshot().Vehicles {
		if v.Name == name {
			known = true
			break
		}
	}
	if !known {
		http.Error(w, "vehicle not found", http.StatusNotFound)
		return
	}

	rows, err := s.DB.VehicleHistory(name)
	if err != nil {
		slog.Error("vehicle history query failed", "vehicle", name, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []persistence.VehicleRecord{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "error", err)
		return
	}
	c := &streamClient{hub: s.hub, conn: conn, send: make(chan []byte, 256)}
	if !s.hub.add(c) {
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func queryLimit(r *http.Request, def, max int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= max {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
