// Package api exposes the scheduler's status over HTTP: job submission,
// status lookups, aggregate stats, and a websocket stream for live dashboards.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/docsmith/internal/scheduler"
)

// Server is the HTTP status API
type Server struct {
	sched *scheduler.Scheduler
	addr  string
	mux   *http.ServeMux
	srv   *http.Server
	log   zerolog.Logger

	statsInterval time.Duration
}

// NewServer creates the API server for the given scheduler
func NewServer(sched *scheduler.Scheduler, addr string, log zerolog.Logger) *Server {
	s := &Server{
		sched:         sched,
		addr:          addr,
		mux:           http.NewServeMux(),
		log:           log.With().Str("component", "api").Logger(),
		statsInterval: time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/jobs/", s.handleJob)
	s.mux.HandleFunc("/api/jobs/running", s.handleRunning)
	s.mux.HandleFunc("/api/jobs/recent", s.handleRecent)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
}

// Handler returns the route handler, for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving and blocks until the server stops
func (s *Server) Start() error {
	s.srv = &http.Server{Addr: s.addr, Handler: s.mux}
	s.log.Info().Str("addr", s.addr).Msg("status api listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, format string, args ...interface{}) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprintf(format, args...)})
}
