// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/quorum/internal/domain/model"
)

// AskHandler handles query requests.
type AskHandler struct {
	deps Dependencies
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(deps Dependencies) *AskHandler {
	return &AskHandler{deps: deps}
}

// HandleAsk handles POST /ask requests.
func (h *AskHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	const op = "api.ask"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	var resp model.UnifiedResponse
	var err error
	if req.TopN > 0 {
		resp, err = h.deps.AskTop(r.Context(), req.Query, req.ComplexityLevel, req.UserID, req.TopN)
	} else {
		resp, err = h.deps.Ask(r.Context(), req.Query, req.UserID)
	}
	if err != nil {
		if isUnavailable(err) {
			writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
			return
		}
		if isNoOutputs(err) {
			writeError(w, http.StatusBadGateway, "no_outputs", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// isUnavailable reports whether err indicates the service is not running.
func isUnavailable(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not started")
}

// isNoOutputs reports whether err indicates every brain failed or timed out.
func isNoOutputs(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "no brain")
}
