// Package server exposes the field-config service over HTTP.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/groblegark/fieldscript/internal/service"
)

// Server holds the HTTP-facing state.
type Server struct {
	svc *service.Service
}

// New returns a Server for the given service.
func New(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/configs", s.handleListConfigs)
	mux.HandleFunc("GET /v1/configs/{id}", s.handleGetConfig)
	mux.HandleFunc("PUT /v1/configs/{id}", s.handleUpdateConfig)
	mux.HandleFunc("GET /v1/configs/{id}/script", s.handleGetScript)
	mux.HandleFunc("POST /v1/cache/invalidate", s.handleInvalidateAll)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
