package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-project-hub/internal/model"
)

const maxAttachments = 10

type taskService interface {
	List(ctx context.Context, identity model.Identity, projectID string) ([]model.TaskDetail, error)
	Get(ctx context.Context, identity model.Identity, taskID string) (model.TaskDetail, error)
	Create(ctx context.Context, identity model.Identity, projectID string, req model.CreateTaskRequest, files []model.Upload, baseURL string) (model.Task, error)
	Update(ctx context.Context, identity model.Identity, taskID string, req model.UpdateTaskRequest, files []model.Upload, baseURL string) (model.Task, error)
	Delete(ctx context.Context, identity model.Identity, taskID string) error
	CreateSubTask(ctx context.Context, identity model.Identity, taskID string, req model.CreateSubTaskRequest) (model.SubTask, error)
	UpdateSubTask(ctx context.Context, identity model.Identity, subtaskID string, req model.UpdateSubTaskRequest) (model.SubTask, error)
	DeleteSubTask(ctx context.Context, identity model.Identity, subtaskID string) error
}

type TaskHandler struct {
	service           taskService
	baseURL           string
	maxAttachmentSize int64
}

func NewTaskHandler(service taskService, baseURL string, maxAttachmentSize int64) *TaskHandler {
	return &TaskHandler{service: service, baseURL: baseURL, maxAttachmentSize: maxAttachmentSize}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), identity, chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tasks, nil)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), identity, chi.URLParam(r, "taskId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, task, nil)
}

// Create accepts JSON or a multipart form carrying "attachments" files.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.CreateTaskRequest
	var files []model.Upload

	if isMultipart(r) {
		form, err := readMultipart(w, r, "attachments", h.maxAttachmentSize, maxAttachments)
		if err != nil {
			writeError(w, err)
			return
		}
		payload = model.CreateTaskRequest{
			Title:       form.value("title"),
			Description: form.value("description"),
			AssignedTo:  form.value("assignedTo"),
			Status:      form.value("status"),
		}
		files = form.files
	} else if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.service.Create(r.Context(), identity, chi.URLParam(r, "projectId"), payload, files, publicBaseURL(h.baseURL, r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Task created successfully", task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.UpdateTaskRequest
	var files []model.Upload

	if isMultipart(r) {
		form, err := readMultipart(w, r, "attachments", h.maxAttachmentSize, maxAttachments)
		if err != nil {
			writeError(w, err)
			return
		}
		payload = model.UpdateTaskRequest{
			Title:       form.optional("title"),
			Description: form.optional("description"),
			ProjectID:   form.optional("project"),
			AssignedTo:  form.optional("assignedTo"),
			Status:      form.optional("status"),
		}
		files = form.files
	} else if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.service.Update(r.Context(), identity, chi.URLParam(r, "taskId"), payload, files, publicBaseURL(h.baseURL, r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "taskId")); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Task deleted successfully", nil)
}

func (h *TaskHandler) CreateSubTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.CreateSubTaskRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	subtask, err := h.service.CreateSubTask(r.Context(), identity, chi.URLParam(r, "taskId"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Subtask created successfully", subtask)
}

func (h *TaskHandler) UpdateSubTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.UpdateSubTaskRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	subtask, err := h.service.UpdateSubTask(r.Context(), identity, chi.URLParam(r, "subtaskId"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Subtask updated successfully", subtask)
}

func (h *TaskHandler) DeleteSubTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSubTask(r.Context(), identity, chi.URLParam(r, "subtaskId")); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Subtask deleted successfully", nil)
}
