package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-project-hub/pkg/apierror"
)

type pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db pinger
}

func NewHealthHandler(db pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		writeError(w, apierror.New("UNAVAILABLE", "database is unreachable", "", http.StatusServiceUnavailable))
		return
	}

	writeMessage(w, http.StatusOK, "Server is running", map[string]string{"status": "ok"})
}
