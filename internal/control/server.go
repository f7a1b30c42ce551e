package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes health and metrics over HTTP.
type Server struct {
	session *Session
	server  *http.Server
}

// NewServer creates the HTTP server for a session.
func NewServer(session *Session, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		session: session,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	// Healthy as long as at least one provider is answering
	available := 0
	for _, h := range s.session.ProviderHealth() {
		if h.Available {
			available++
		}
	}

	status := "healthy"
	code := http.StatusOK
	if available == 0 {
		status = "critical"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) handleDetailed(w http.ResponseWriter, _ *http.Request) {
	report := map[string]any{
		"session":   s.session.ID,
		"providers": s.session.ProviderHealth(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
