package service

import (
	"context"
	"io"
	"time"

	"go-project-hub/internal/model"
	"go-project-hub/internal/storage"
)

// UserStore is the credential store consumed by AuthService.
type UserStore interface {
	Create(ctx context.Context, u model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByVerificationHash(ctx context.Context, hash string) (model.User, error)
	FindByResetHash(ctx context.Context, hash string) (model.User, error)
	SetVerificationToken(ctx context.Context, userID string, hash string, expiry time.Time) error
	MarkVerified(ctx context.Context, userID string) error
	SetRefreshToken(ctx context.Context, userID string, token *string) error
	SwapRefreshToken(ctx context.Context, userID string, presented string, next string) (bool, error)
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	SetResetToken(ctx context.Context, userID string, hash string, expiry time.Time) error
	ResetPassword(ctx context.Context, userID string, passwordHash string) error
}

type UserLookup interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

type ProjectStore interface {
	ListForUser(ctx context.Context, userID string) ([]model.ProjectListItem, error)
	FindByID(ctx context.Context, id string) (model.Project, error)
	CreateWithOwner(ctx context.Context, p model.Project, owner model.ProjectMember) error
	Update(ctx context.Context, id string, name *string, description *string, at time.Time) (model.Project, error)
	Delete(ctx context.Context, id string) error
}

type MemberStore interface {
	ListByProject(ctx context.Context, projectID string) ([]model.MemberDetail, error)
	Find(ctx context.Context, projectID string, userID string) (model.ProjectMember, error)
	Add(ctx context.Context, m model.ProjectMember) error
	UpdateRole(ctx context.Context, projectID string, userID string, role model.Role, at time.Time) (model.ProjectMember, error)
	Remove(ctx context.Context, projectID string, userID string) error
}

type TaskStore interface {
	ListByProject(ctx context.Context, projectID string) ([]model.TaskDetail, error)
	FindByID(ctx context.Context, id string) (model.Task, error)
	FindDetail(ctx context.Context, id string) (model.TaskDetail, error)
	Create(ctx context.Context, t model.Task) error
	Update(ctx context.Context, id string, patch model.TaskPatch, at time.Time) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

type SubTaskStore interface {
	FindByID(ctx context.Context, id string) (model.SubTask, error)
	Create(ctx context.Context, s model.SubTask) error
	Update(ctx context.Context, id string, title *string, completed *bool, at time.Time) (model.SubTask, error)
	Delete(ctx context.Context, id string) error
}

type NoteStore interface {
	ListByProject(ctx context.Context, projectID string) ([]model.NoteDetail, error)
	FindDetail(ctx context.Context, id string) (model.NoteDetail, error)
	FindByID(ctx context.Context, id string) (model.ProjectNote, error)
	Create(ctx context.Context, n model.ProjectNote) error
	Update(ctx context.Context, id string, content string, at time.Time) (model.ProjectNote, error)
	Delete(ctx context.Context, id string) error
}

type ActivityStore interface {
	Insert(ctx context.Context, entry model.ActivityEntry) error
	List(ctx context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error)
}

// FileStore persists uploads below the public directory.
type FileStore interface {
	Save(dir string, name string, r io.Reader) (storage.StoredFile, error)
	Remove(rel string) error
}

// ProjectAccess answers whether an identity may read or manage a project.
type ProjectAccess interface {
	Authorize(ctx context.Context, identity model.Identity, projectID string) error
	AuthorizeManage(ctx context.Context, identity model.Identity, projectID string) error
}
