package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/arcade-backend/internal/repository"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleGames(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.uGame.Games())
}

func (that *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleSession")

	sessionID := chi.URLParam(r, "id")

	snapshot, err := that.uGame.Snapshot(r.Context(), sessionID)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}

	if err != nil {
		log.Error("failed to get snapshot", "session_id", sessionID, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
