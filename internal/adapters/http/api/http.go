// Package api exposes the leaderboard to the host shell over loopback HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/tilescores/internal/app"
	"github.com/okian/tilescores/internal/domain/model"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	AddScore(ctx context.Context, name string, time float64) (model.Score, error)
	TopScores(ctx context.Context, limit int) ([]model.Score, error)
}

// Server wires HTTP routes for the leaderboard API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	invokeHandler *InvokeHandler
	scoresHandler *ScoresHandler
}

// NewServer creates a new API server with all handlers. defaultLimit is used
// by GET /scores when the query has no limit.
func NewServer(deps Dependencies, statsProvider StatsProvider, defaultLimit int) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		invokeHandler: NewInvokeHandler(deps),
		scoresHandler: NewScoresHandler(deps, defaultLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/invoke/", MetricsMiddleware(s.invokeHandler.HandleInvoke, "invoke"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandleScores, "scores"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeErrorString renders err as a bare JSON string, the shape the host
// shell expects from a failed command.
func writeErrorString(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, msg)
}

// statusFor maps an upstream error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}
