package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-project-hub/internal/event"
	"go-project-hub/internal/model"
	"go-project-hub/internal/util"
)

type TaskService struct {
	tasks    TaskStore
	subtasks SubTaskStore
	users    UserLookup
	access   ProjectAccess
	files    FileStore
	bus      event.Bus
	now      func() time.Time
}

func NewTaskService(tasks TaskStore, subtasks SubTaskStore, users UserLookup, access ProjectAccess, files FileStore, bus event.Bus) *TaskService {
	return &TaskService{
		tasks:    tasks,
		subtasks: subtasks,
		users:    users,
		access:   access,
		files:    files,
		bus:      bus,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskService) List(ctx context.Context, identity model.Identity, projectID string) ([]model.TaskDetail, error) {
	if err := s.access.Authorize(ctx, identity, projectID); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *TaskService) Get(ctx context.Context, identity model.Identity, taskID string) (model.TaskDetail, error) {
	detail, err := s.tasks.FindDetail(ctx, taskID)
	if err != nil {
		return model.TaskDetail{}, err
	}
	if err := s.access.Authorize(ctx, identity, detail.Project.ID); err != nil {
		return model.TaskDetail{}, err
	}
	return detail, nil
}

func (s *TaskService) Create(ctx context.Context, identity model.Identity, projectID string, req model.CreateTaskRequest, files []model.Upload, baseURL string) (model.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := req.Validate(); err != nil {
		return model.Task{}, model.NewValidationError(err)
	}
	status, err := model.ParseTaskStatus(req.Status)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.access.AuthorizeManage(ctx, identity, projectID); err != nil {
		return model.Task{}, err
	}
	if _, err := s.users.FindByID(ctx, req.AssignedTo); err != nil {
		return model.Task{}, err
	}

	attachments, err := s.storeAttachments(files, baseURL)
	if err != nil {
		return model.Task{}, err
	}

	now := s.now()
	task := model.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		ProjectID:   projectID,
		AssignedTo:  req.AssignedTo,
		AssignedBy:  identity.UserID,
		Status:      status,
		Attachments: attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.discard(attachments)
		return model.Task{}, err
	}

	s.bus.Publish(event.New(event.TypeTaskCreated, projectID, task.ID, identity.UserID, map[string]any{
		"title":       task.Title,
		"assignedTo":  task.AssignedTo,
		"attachments": len(attachments),
	}))
	return task, nil
}

// Update applies a partial change; uploaded files are appended to the existing attachments.
func (s *TaskService) Update(ctx context.Context, identity model.Identity, taskID string, req model.UpdateTaskRequest, files []model.Upload, baseURL string) (model.Task, error) {
	if err := req.Validate(); err != nil {
		return model.Task{}, model.NewValidationError(err)
	}

	current, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.access.Authorize(ctx, identity, current.ProjectID); err != nil {
		return model.Task{}, err
	}

	patch := model.TaskPatch{Description: req.Description, ProjectID: req.ProjectID, AssignedTo: req.AssignedTo}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		patch.Title = &title
	}
	if req.Status != nil {
		status, err := model.ParseTaskStatus(*req.Status)
		if err != nil {
			return model.Task{}, err
		}
		patch.Status = &status
	}
	// A move needs manage rights on both the source and the target project.
	if req.ProjectID != nil && *req.ProjectID != current.ProjectID {
		if err := s.access.AuthorizeManage(ctx, identity, current.ProjectID); err != nil {
			return model.Task{}, err
		}
		if err := s.access.AuthorizeManage(ctx, identity, *req.ProjectID); err != nil {
			return model.Task{}, err
		}
	}
	if req.AssignedTo != nil {
		if _, err := s.users.FindByID(ctx, *req.AssignedTo); err != nil {
			return model.Task{}, err
		}
	}

	attachments, err := s.storeAttachments(files, baseURL)
	if err != nil {
		return model.Task{}, err
	}
	patch.Attachments = attachments

	task, err := s.tasks.Update(ctx, taskID, patch, s.now())
	if err != nil {
		s.discard(attachments)
		return model.Task{}, err
	}

	s.bus.Publish(event.New(event.TypeTaskUpdated, task.ProjectID, task.ID, identity.UserID, map[string]any{
		"status":      task.Status,
		"attachments": len(attachments),
	}))
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, identity model.Identity, taskID string) error {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.access.AuthorizeManage(ctx, identity, task.ProjectID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	s.discard(task.Attachments)
	s.bus.Publish(event.New(event.TypeTaskDeleted, task.ProjectID, task.ID, identity.UserID, map[string]any{"title": task.Title}))
	return nil
}

func (s *TaskService) CreateSubTask(ctx context.Context, identity model.Identity, taskID string, req model.CreateSubTaskRequest) (model.SubTask, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := req.Validate(); err != nil {
		return model.SubTask{}, model.NewValidationError(err)
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return model.SubTask{}, err
	}
	if err := s.access.Authorize(ctx, identity, task.ProjectID); err != nil {
		return model.SubTask{}, err
	}

	now := s.now()
	subtask := model.SubTask{
		ID:        uuid.NewString(),
		Title:     req.Title,
		TaskID:    task.ID,
		CreatedBy: identity.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.subtasks.Create(ctx, subtask); err != nil {
		return model.SubTask{}, err
	}

	s.bus.Publish(event.New(event.TypeSubTaskCreated, task.ProjectID, subtask.ID, identity.UserID, map[string]any{"taskId": task.ID, "title": subtask.Title}))
	return subtask, nil
}

func (s *TaskService) UpdateSubTask(ctx context.Context, identity model.Identity, subtaskID string, req model.UpdateSubTaskRequest) (model.SubTask, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if err := req.Validate(); err != nil {
		return model.SubTask{}, model.NewValidationError(err)
	}

	task, err := s.parentTask(ctx, subtaskID)
	if err != nil {
		return model.SubTask{}, err
	}
	if err := s.access.Authorize(ctx, identity, task.ProjectID); err != nil {
		return model.SubTask{}, err
	}

	subtask, err := s.subtasks.Update(ctx, subtaskID, req.Title, req.IsCompleted, s.now())
	if err != nil {
		return model.SubTask{}, err
	}

	s.bus.Publish(event.New(event.TypeSubTaskUpdated, task.ProjectID, subtask.ID, identity.UserID, map[string]any{"isCompleted": subtask.IsCompleted}))
	return subtask, nil
}

func (s *TaskService) DeleteSubTask(ctx context.Context, identity model.Identity, subtaskID string) error {
	task, err := s.parentTask(ctx, subtaskID)
	if err != nil {
		return err
	}
	if err := s.access.AuthorizeManage(ctx, identity, task.ProjectID); err != nil {
		return err
	}
	if err := s.subtasks.Delete(ctx, subtaskID); err != nil {
		return err
	}

	s.bus.Publish(event.New(event.TypeSubTaskDeleted, task.ProjectID, subtaskID, identity.UserID, map[string]any{"taskId": task.ID}))
	return nil
}

func (s *TaskService) parentTask(ctx context.Context, subtaskID string) (model.Task, error) {
	subtask, err := s.subtasks.FindByID(ctx, subtaskID)
	if err != nil {
		return model.Task{}, err
	}
	return s.tasks.FindByID(ctx, subtask.TaskID)
}

func (s *TaskService) storeAttachments(files []model.Upload, baseURL string) ([]model.Attachment, error) {
	attachments := make([]model.Attachment, 0, len(files))
	for _, file := range files {
		name, err := util.SanitizeFilename(file.Filename)
		if err != nil {
			s.discard(attachments)
			return nil, err
		}

		mimeType, content, err := util.SniffMIME(file.Content)
		if err != nil {
			s.discard(attachments)
			return nil, fmt.Errorf("read attachment %q: %w", name, err)
		}

		stored, err := s.files.Save(uploadDir, name, content)
		if err != nil {
			s.discard(attachments)
			return nil, fmt.Errorf("store attachment %q: %w", name, err)
		}

		attachments = append(attachments, model.Attachment{
			URL:      model.PublicURL(baseURL, stored.Path),
			MimeType: mimeType,
			Size:     stored.Size,
		})
	}
	return attachments, nil
}

func (s *TaskService) discard(attachments []model.Attachment) {
	for _, attachment := range attachments {
		rel := storedPathFromURL(attachment.URL)
		if rel == "" {
			continue
		}
		if err := s.files.Remove(rel); err != nil {
			slog.Warn("failed to remove attachment", "path", rel, "error", err)
		}
	}
}
