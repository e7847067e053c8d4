package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-project-hub/internal/model"
)

type noteService interface {
	List(ctx context.Context, identity model.Identity, projectID string) ([]model.NoteDetail, error)
	Get(ctx context.Context, identity model.Identity, noteID string) (model.NoteDetail, error)
	Create(ctx context.Context, identity model.Identity, projectID string, req model.NoteRequest) (model.ProjectNote, error)
	Update(ctx context.Context, identity model.Identity, noteID string, req model.NoteRequest) (model.ProjectNote, error)
	Delete(ctx context.Context, identity model.Identity, noteID string) error
}

type NoteHandler struct {
	service noteService
}

func NewNoteHandler(service noteService) *NoteHandler {
	return &NoteHandler{service: service}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	notes, err := h.service.List(r.Context(), identity, chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, notes, nil)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	note, err := h.service.Get(r.Context(), identity, chi.URLParam(r, "noteId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, note, nil)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.NoteRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.service.Create(r.Context(), identity, chi.URLParam(r, "projectId"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Note created successfully", note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.NoteRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.service.Update(r.Context(), identity, chi.URLParam(r, "noteId"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Note updated successfully", note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "noteId")); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Note deleted successfully", nil)
}
