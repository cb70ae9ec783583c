// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"
)

// SelectionHandler handles selection preview requests.
type SelectionHandler struct {
	deps Dependencies
}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler(deps Dependencies) *SelectionHandler {
	return &SelectionHandler{deps: deps}
}

// selectionResponse mirrors the OpenAPI schema for GET /selection.
type selectionResponse struct {
	Brains []string `json:"brains"`
}

// HandleGetSelection handles GET /selection requests.
// Query parameters:
//
//	query       required; the question to select brains for
//	complexity  optional float in [0,10], used with top_n
//	user_id     optional; reserved for history-aware ranking
//	top_n       optional; caps the selection at the n best brains
//	detail      optional; "rank" returns the full score breakdown
func (h *SelectionHandler) HandleGetSelection(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_selection"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	complexity := 0.0
	if raw := r.URL.Query().Get("complexity"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 10 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		complexity = v
	}

	userID := r.URL.Query().Get("user_id")

	if r.URL.Query().Get("detail") == "rank" {
		ranked, err := h.deps.Rank(r.Context(), query, complexity, userID)
		if err != nil {
			if isUnavailable(err) {
				writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, ranked)
		return
	}

	var chosen []string
	var err error
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, perr := strconv.Atoi(raw)
		if perr != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		var ids []string
		ids, err = h.selectTop(r, query, complexity, userID, n)
		chosen = ids
	} else {
		var ids []string
		ids, err = h.selectAll(r, query)
		chosen = ids
	}
	if err != nil {
		if isUnavailable(err) {
			writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{Brains: chosen})
}

func (h *SelectionHandler) selectAll(r *http.Request, query string) ([]string, error) {
	ids, err := h.deps.Select(r.Context(), query)
	if err != nil {
		return nil, err
	}
	return asStrings(ids), nil
}

func (h *SelectionHandler) selectTop(r *http.Request, query string, complexity float64, userID string, n int) ([]string, error) {
	ids, err := h.deps.SelectTop(r.Context(), query, complexity, userID, n)
	if err != nil {
		return nil, err
	}
	return asStrings(ids), nil
}
