package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"miningauto/apps/miner/internal/session"
)

// SessionHandler exposes the live session snapshot
type SessionHandler struct {
	runner *session.Runner
	logger *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(runner *session.Runner, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{runner: runner, logger: logger}
}

// GetSession handles GET /api/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snapshot := h.runner.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		h.logger.Error("Failed to encode session snapshot", zap.Error(err))
	}
}
