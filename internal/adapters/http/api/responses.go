// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"
)

// Default paging for history queries.
const defaultHistoryPage = 10

// ResponsesHandler handles response history requests.
type ResponsesHandler struct {
	deps Dependencies
}

// NewResponsesHandler creates a new responses handler.
func NewResponsesHandler(deps Dependencies) *ResponsesHandler {
	return &ResponsesHandler{deps: deps}
}

// HandleGetResponses handles GET /responses/{user_id}?limit=N requests.
func (h *ResponsesHandler) HandleGetResponses(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_responses"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /responses/
	userID := strings.TrimPrefix(r.URL.Path, "/responses/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	limit := defaultHistoryPage
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	recent, err := h.deps.Recent(r.Context(), userID, limit)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		if isUnavailable(err) {
			writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, recent)
}

// isNotFound allows the API to translate upstream not-found errors to 404.
// This stays generic to avoid tight coupling with specific packages.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}
