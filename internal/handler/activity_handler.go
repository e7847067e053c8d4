package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-project-hub/internal/model"
)

type activityService interface {
	List(ctx context.Context, identity model.Identity, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error)
}

type ActivityHandler struct {
	service activityService
}

func NewActivityHandler(service activityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	entries, meta, err := h.service.List(r.Context(), identity, model.ActivityQuery{
		ProjectID: chi.URLParam(r, "projectId"),
		Action:    query.Get("action"),
		Page:      parseIntOrDefault(query.Get("page"), 1),
		Limit:     parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.ActivityListData{Items: entries}, &meta)
}
