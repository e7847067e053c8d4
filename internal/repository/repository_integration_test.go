//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-project-hub/internal/database"
	"go-project-hub/internal/model"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, url, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	_, err = db.Pool.Exec(ctx, `TRUNCATE activity_entries, project_notes, subtasks, tasks, project_members, projects, users`)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, repo *UserRepository, email string, username string) model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		FullName:     "Test " + username,
		PasswordHash: "hash",
		Role:         model.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepositoryRefreshSlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.Pool)

	alice := seedUser(t, users, "a@x.com", "alice")

	err := users.Create(ctx, model.User{ID: uuid.NewString(), Email: "a@x.com", Username: "other", PasswordHash: "h", Role: model.RoleMember})
	assert.ErrorIs(t, err, model.ErrConflict)

	first := "refresh-1"
	require.NoError(t, users.SetRefreshToken(ctx, alice.ID, &first))

	swapped, err := users.SwapRefreshToken(ctx, alice.ID, "refresh-1", "refresh-2")
	require.NoError(t, err)
	assert.True(t, swapped)

	swapped, err = users.SwapRefreshToken(ctx, alice.ID, "refresh-1", "refresh-3")
	require.NoError(t, err)
	assert.False(t, swapped)

	got, err := users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", got.StoredRefreshToken())

	require.NoError(t, users.SetRefreshToken(ctx, alice.ID, nil))
	got, err = users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)

	_, err = users.FindByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserRepositoryVerification(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.Pool)

	alice := seedUser(t, users, "a@x.com", "alice")
	require.NoError(t, users.SetVerificationToken(ctx, alice.ID, "hash-1", time.Now().Add(time.Minute)))

	found, err := users.FindByVerificationHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	require.NoError(t, users.MarkVerified(ctx, alice.ID))
	_, err = users.FindByVerificationHash(ctx, "hash-1")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestProjectLifecycleCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db.Pool)
	projects := NewProjectRepository(db.Pool)
	members := NewMemberRepository(db.Pool)
	tasks := NewTaskRepository(db.Pool)
	subtasks := NewSubTaskRepository(db.Pool)
	notes := NewNoteRepository(db.Pool)

	owner := seedUser(t, users, "owner@x.com", "owner")
	bob := seedUser(t, users, "bob@x.com", "bob")
	now := time.Now().UTC()

	project := model.Project{ID: uuid.NewString(), Name: "Apollo", CreatedBy: owner.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, projects.CreateWithOwner(ctx, project, model.ProjectMember{
		ID: uuid.NewString(), ProjectID: project.ID, UserID: owner.ID, Role: model.RoleProjectAdmin, CreatedAt: now, UpdatedAt: now,
	}))

	dup := project
	dup.ID = uuid.NewString()
	err := projects.CreateWithOwner(ctx, dup, model.ProjectMember{ID: uuid.NewString(), ProjectID: dup.ID, UserID: owner.ID, Role: model.RoleProjectAdmin})
	assert.ErrorIs(t, err, model.ErrConflict)

	list, err := projects.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Members)
	assert.Equal(t, model.RoleProjectAdmin, list[0].Role)

	require.NoError(t, members.Add(ctx, model.ProjectMember{ID: uuid.NewString(), ProjectID: project.ID, UserID: bob.ID, Role: model.RoleMember, CreatedAt: now, UpdatedAt: now}))
	assert.ErrorIs(t, members.Add(ctx, model.ProjectMember{ID: uuid.NewString(), ProjectID: project.ID, UserID: bob.ID, Role: model.RoleMember}), model.ErrConflict)

	task := model.Task{ID: uuid.NewString(), Title: "Ship", ProjectID: project.ID, AssignedTo: bob.ID, AssignedBy: owner.ID, Status: model.TaskStatusTodo, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, tasks.Create(ctx, task))

	status := model.TaskStatusDone
	updated, err := tasks.Update(ctx, task.ID, model.TaskPatch{
		Status:      &status,
		Attachments: []model.Attachment{{URL: "http://h/public/images/1-a.png", MimeType: "image/png", Size: 10}},
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, updated.Status)
	assert.Len(t, updated.Attachments, 1)

	require.NoError(t, subtasks.Create(ctx, model.SubTask{ID: uuid.NewString(), Title: "Tests", TaskID: task.ID, CreatedBy: owner.ID, CreatedAt: now, UpdatedAt: now}))
	detail, err := tasks.FindDetail(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", detail.AssignedTo.Username)
	assert.Equal(t, "Apollo", detail.Project.Name)
	assert.Len(t, detail.SubTasks, 1)

	require.NoError(t, notes.Create(ctx, model.ProjectNote{ID: uuid.NewString(), ProjectID: project.ID, Content: "kickoff", CreatedBy: owner.ID, CreatedAt: now, UpdatedAt: now}))

	require.NoError(t, projects.Delete(ctx, project.ID))
	_, err = tasks.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, model.ErrTaskNotFound)
	_, err = members.Find(ctx, project.ID, bob.ID)
	assert.ErrorIs(t, err, model.ErrMemberNotFound)
	remaining, err := notes.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestActivityRepositoryPaging(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	activity := NewActivityRepository(db.Pool)

	base := time.Now().UTC()
	for i := range 5 {
		require.NoError(t, activity.Insert(ctx, model.ActivityEntry{
			ProjectID:  "p-1",
			ActorID:    "u-1",
			Action:     "task.created",
			SubjectID:  uuid.NewString(),
			Details:    map[string]any{"index": i},
			OccurredAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, meta, err := activity.List(ctx, model.ActivityQuery{ProjectID: "p-1", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	require.Len(t, entries, 2)
	assert.EqualValues(t, 2, entries[0].Details["index"])
}
