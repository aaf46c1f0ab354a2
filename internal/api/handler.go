package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// queryRequest is the inbound body for POST /query
type queryRequest struct {
	Question string `json:"question"`
}

// queryResponse is the success body for POST /query
type queryResponse struct {
	Generation string `json:"generation"`
}

// QueryHandler feeds one question into the escalation loop and returns
// the final generation. Stateless: nothing survives the request.
type QueryHandler struct {
	service QueryService
	logger  *slog.Logger
}

func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		// Malformed requests never reach the loop
		writeError(w, http.StatusBadRequest, "missing required field: question")
		return
	}

	answer, err := h.service.Ask(r.Context(), question)
	if err != nil {
		// Internals are logged; the client gets a generic failure
		h.logger.Error("query failed", "question", question, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to answer question")
		return
	}

	h.logger.Info("answered question",
		"source", answer.Source,
		"rounds", answer.Rounds,
		"documents", len(answer.Documents))

	writeJSON(w, http.StatusOK, queryResponse{Generation: answer.Generation})
}
