// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/quorum/internal/domain/model"
	"github.com/okian/quorum/internal/domain/selection"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ask runs a query end to end and returns the unified response.
	Ask(ctx context.Context, query, userID string) (model.UnifiedResponse, error)

	// AskTop is Ask with ranked selection capped at n brains.
	AskTop(ctx context.Context, query string, complexityLevel float64, userID string, n int) (model.UnifiedResponse, error)

	// Read operations expose selection and history data.
	Select(ctx context.Context, query string) ([]model.BrainID, error)
	SelectTop(ctx context.Context, query string, complexityLevel float64, userID string, n int) ([]model.BrainID, error)
	Rank(ctx context.Context, query string, complexityLevel float64, userID string) ([]selection.Scored, error)
	Recent(ctx context.Context, userID string, limit int) ([]model.UnifiedResponse, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	askHandler       *AskHandler
	selectionHandler *SelectionHandler
	responsesHandler *ResponsesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		askHandler:       NewAskHandler(deps),
		selectionHandler: NewSelectionHandler(deps),
		responsesHandler: NewResponsesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/ask", MetricsMiddleware(s.askHandler.HandleAsk, "ask"))
	mux.HandleFunc("/selection", MetricsMiddleware(s.selectionHandler.HandleGetSelection, "selection"))
	mux.HandleFunc("/responses/", MetricsMiddleware(s.responsesHandler.HandleGetResponses, "responses"))
}

// askRequest mirrors the OpenAPI schema for POST /ask.
type askRequest struct {
	Query           string  `json:"query"`
	UserID          string  `json:"user_id"`
	ComplexityLevel float64 `json:"complexity_level"`
	TopN            int     `json:"top_n"`
}

func (a askRequest) validate() error {
	switch {
	case strings.TrimSpace(a.Query) == "":
		return errors.New("missing query")
	case a.ComplexityLevel < 0 || a.ComplexityLevel > 10:
		return errors.New("complexity_level must be between 0 and 10")
	case a.TopN < 0:
		return errors.New("top_n must not be negative")
	}
	return nil
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

func asStrings(ids []model.BrainID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
