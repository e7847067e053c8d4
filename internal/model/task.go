package model

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// ParseTaskStatus normalises raw input; empty input yields TaskStatusTodo.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return TaskStatusTodo, nil
	}

	status := TaskStatus(strings.ReplaceAll(cleaned, "-", "_"))
	if !status.Valid() {
		return "", NewFieldError("status", "must be one of todo, in_progress, done")
	}
	return status, nil
}

type Attachment struct {
	URL      string `json:"url"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
}

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ProjectID   string       `json:"projectId"`
	AssignedTo  string       `json:"assignedTo"`
	AssignedBy  string       `json:"assignedBy"`
	Status      TaskStatus   `json:"status"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskDetail is a task joined with its assignee, assigner and project.
type TaskDetail struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TaskStatus     `json:"status"`
	Attachments []Attachment   `json:"attachments"`
	AssignedTo  UserSummary    `json:"assignedTo"`
	AssignedBy  UserSummary    `json:"assignedBy"`
	Project     ProjectSummary `json:"project"`
	SubTasks    []SubTask      `json:"subtasks,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type SubTask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TaskID      string    `json:"taskId"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskPatch carries the optional fields of a partial task update.
type TaskPatch struct {
	Title       *string
	Description *string
	ProjectID   *string
	AssignedTo  *string
	Status      *TaskStatus
	Attachments []Attachment
}
