package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-project-hub/internal/model"
)

type projectService interface {
	List(ctx context.Context, identity model.Identity) ([]model.ProjectListItem, error)
	Get(ctx context.Context, identity model.Identity, projectID string) (model.Project, error)
	Create(ctx context.Context, identity model.Identity, req model.CreateProjectRequest) (model.Project, error)
	Update(ctx context.Context, identity model.Identity, projectID string, req model.UpdateProjectRequest) (model.Project, error)
	Delete(ctx context.Context, identity model.Identity, projectID string) error
	ListMembers(ctx context.Context, identity model.Identity, projectID string) ([]model.MemberDetail, error)
	AddMember(ctx context.Context, identity model.Identity, projectID string, req model.AddMemberRequest) (model.ProjectMember, error)
	UpdateMemberRole(ctx context.Context, identity model.Identity, projectID string, userID string, req model.UpdateMemberRoleRequest) (model.ProjectMember, error)
	RemoveMember(ctx context.Context, identity model.Identity, projectID string, userID string) error
}

type ProjectHandler struct {
	service projectService
}

func NewProjectHandler(service projectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	projects, err := h.service.List(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, projects, nil)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	project, err := h.service.Get(r.Context(), identity, chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, project, nil)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.CreateProjectRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.service.Create(r.Context(), identity, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Project created successfully", project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.UpdateProjectRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.service.Update(r.Context(), identity, chi.URLParam(r, "projectId"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Project updated successfully", project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "projectId")); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Project deleted successfully", nil)
}

func (h *ProjectHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	members, err := h.service.ListMembers(r.Context(), identity, chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, members, nil)
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.AddMemberRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	member, err := h.service.AddMember(r.Context(), identity, chi.URLParam(r, "projectId"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Project member added successfully", member)
}

func (h *ProjectHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.UpdateMemberRoleRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	member, err := h.service.UpdateMemberRole(r.Context(), identity, chi.URLParam(r, "projectId"), chi.URLParam(r, "userId"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Project member role updated successfully", member)
}

func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveMember(r.Context(), identity, chi.URLParam(r, "projectId"), chi.URLParam(r, "userId")); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Project member removed successfully", nil)
}
