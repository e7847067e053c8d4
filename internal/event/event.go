package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeProjectCreated Type = "project.created"
	TypeProjectUpdated Type = "project.updated"
	TypeProjectDeleted Type = "project.deleted"

	TypeMemberAdded       Type = "member.added"
	TypeMemberRoleUpdated Type = "member.role_updated"
	TypeMemberRemoved     Type = "member.removed"

	TypeTaskCreated Type = "task.created"
	TypeTaskUpdated Type = "task.updated"
	TypeTaskDeleted Type = "task.deleted"

	TypeSubTaskCreated Type = "subtask.created"
	TypeSubTaskUpdated Type = "subtask.updated"
	TypeSubTaskDeleted Type = "subtask.deleted"

	TypeNoteCreated Type = "note.created"
	TypeNoteUpdated Type = "note.updated"
	TypeNoteDeleted Type = "note.deleted"
)

// Event is a project-scoped domain change.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	ProjectID string         `json:"projectId"`
	SubjectID string         `json:"subjectId,omitempty"`
	ActorID   string         `json:"actorId"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func New(typ Type, projectID string, subjectID string, actorID string, details map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		ProjectID: projectID,
		SubjectID: subjectID,
		ActorID:   actorID,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // channel and unsubscribe function
}
