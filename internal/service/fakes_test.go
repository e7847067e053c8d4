package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"go-project-hub/internal/mail"
	"go-project-hub/internal/model"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]model.User)}
}

func (f *fakeUsers) put(u model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

func (f *fakeUsers) get(id string) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

func (f *fakeUsers) find(match func(model.User) bool) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeUsers) update(id string, apply func(*model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	apply(&u)
	f.users[id] = u
	return nil
}

func (f *fakeUsers) Create(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return model.ErrConflict
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (model.User, error) {
	return f.find(func(u model.User) bool { return u.ID == id })
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	return f.find(func(u model.User) bool { return u.Email == email })
}

func (f *fakeUsers) FindByVerificationHash(_ context.Context, hash string) (model.User, error) {
	return f.find(func(u model.User) bool {
		return u.EmailVerificationTokenHash != nil && *u.EmailVerificationTokenHash == hash
	})
}

func (f *fakeUsers) FindByResetHash(_ context.Context, hash string) (model.User, error) {
	return f.find(func(u model.User) bool {
		return u.ForgotPasswordTokenHash != nil && *u.ForgotPasswordTokenHash == hash
	})
}

func (f *fakeUsers) SetVerificationToken(_ context.Context, userID string, hash string, expiry time.Time) error {
	return f.update(userID, func(u *model.User) {
		u.EmailVerificationTokenHash = &hash
		u.EmailVerificationExpiry = &expiry
	})
}

func (f *fakeUsers) MarkVerified(_ context.Context, userID string) error {
	return f.update(userID, func(u *model.User) {
		u.IsEmailVerified = true
		u.EmailVerificationTokenHash = nil
		u.EmailVerificationExpiry = nil
	})
}

func (f *fakeUsers) SetRefreshToken(_ context.Context, userID string, token *string) error {
	return f.update(userID, func(u *model.User) { u.RefreshToken = token })
}

func (f *fakeUsers) SwapRefreshToken(_ context.Context, userID string, presented string, next string) (bool, error) {
	swapped := false
	err := f.update(userID, func(u *model.User) {
		if u.RefreshToken != nil && *u.RefreshToken == presented {
			u.RefreshToken = &next
			swapped = true
		}
	})
	return swapped, err
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	return f.update(userID, func(u *model.User) { u.PasswordHash = passwordHash })
}

func (f *fakeUsers) SetResetToken(_ context.Context, userID string, hash string, expiry time.Time) error {
	return f.update(userID, func(u *model.User) {
		u.ForgotPasswordTokenHash = &hash
		u.ForgotPasswordExpiry = &expiry
	})
}

func (f *fakeUsers) ResetPassword(_ context.Context, userID string, passwordHash string) error {
	return f.update(userID, func(u *model.User) {
		u.PasswordHash = passwordHash
		u.ForgotPasswordTokenHash = nil
		u.ForgotPasswordExpiry = nil
		u.RefreshToken = nil
	})
}

type fakeProjects struct {
	mu       sync.Mutex
	projects map[string]model.Project
	members  *fakeMembers
}

func newFakeProjects(members *fakeMembers) *fakeProjects {
	return &fakeProjects{projects: make(map[string]model.Project), members: members}
}

func (f *fakeProjects) ListForUser(_ context.Context, userID string) ([]model.ProjectListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := []model.ProjectListItem{}
	for _, p := range f.projects {
		m, err := f.members.Find(context.Background(), p.ID, userID)
		if err != nil {
			continue
		}
		items = append(items, model.ProjectListItem{Project: p, Members: f.members.count(p.ID), Role: m.Role})
	}
	return items, nil
}

func (f *fakeProjects) FindByID(_ context.Context, id string) (model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return model.Project{}, model.ErrProjectNotFound
	}
	return p, nil
}

func (f *fakeProjects) CreateWithOwner(ctx context.Context, p model.Project, owner model.ProjectMember) error {
	f.mu.Lock()
	for _, existing := range f.projects {
		if existing.Name == p.Name {
			f.mu.Unlock()
			return model.ErrConflict
		}
	}
	f.projects[p.ID] = p
	f.mu.Unlock()
	return f.members.Add(ctx, owner)
}

func (f *fakeProjects) Update(_ context.Context, id string, name *string, description *string, at time.Time) (model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return model.Project{}, model.ErrProjectNotFound
	}
	if name != nil {
		p.Name = *name
	}
	if description != nil {
		p.Description = *description
	}
	p.UpdatedAt = at
	f.projects[id] = p
	return p, nil
}

func (f *fakeProjects) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return model.ErrProjectNotFound
	}
	delete(f.projects, id)
	return nil
}

type fakeMembers struct {
	mu      sync.Mutex
	members []model.ProjectMember
}

func (f *fakeMembers) count(projectID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.members {
		if m.ProjectID == projectID {
			n++
		}
	}
	return n
}

func (f *fakeMembers) ListByProject(_ context.Context, projectID string) ([]model.MemberDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.MemberDetail{}
	for _, m := range f.members {
		if m.ProjectID == projectID {
			out = append(out, model.MemberDetail{
				ID:      m.ID,
				Role:    m.Role,
				User:    model.UserSummary{ID: m.UserID},
				Project: model.ProjectSummary{ID: m.ProjectID},
			})
		}
	}
	return out, nil
}

func (f *fakeMembers) Find(_ context.Context, projectID string, userID string) (model.ProjectMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.ProjectID == projectID && m.UserID == userID {
			return m, nil
		}
	}
	return model.ProjectMember{}, model.ErrMemberNotFound
}

func (f *fakeMembers) Add(_ context.Context, m model.ProjectMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.members {
		if existing.ProjectID == m.ProjectID && existing.UserID == m.UserID {
			return model.ErrConflict
		}
	}
	f.members = append(f.members, m)
	return nil
}

func (f *fakeMembers) UpdateRole(_ context.Context, projectID string, userID string, role model.Role, at time.Time) (model.ProjectMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.members {
		if m.ProjectID == projectID && m.UserID == userID {
			f.members[i].Role = role
			f.members[i].UpdatedAt = at
			return f.members[i], nil
		}
	}
	return model.ProjectMember{}, model.ErrMemberNotFound
}

func (f *fakeMembers) Remove(_ context.Context, projectID string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.members {
		if m.ProjectID == projectID && m.UserID == userID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return model.ErrMemberNotFound
}

type fakeTasks struct {
	mu       sync.Mutex
	tasks    map[string]model.Task
	subtasks *fakeSubTasks
}

func newFakeTasks(subtasks *fakeSubTasks) *fakeTasks {
	return &fakeTasks{tasks: make(map[string]model.Task), subtasks: subtasks}
}

func (f *fakeTasks) detail(t model.Task) model.TaskDetail {
	return model.TaskDetail{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Attachments: t.Attachments,
		AssignedTo:  model.UserSummary{ID: t.AssignedTo},
		AssignedBy:  model.UserSummary{ID: t.AssignedBy},
		Project:     model.ProjectSummary{ID: t.ProjectID},
		SubTasks:    f.subtasks.byTask(t.ID),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (f *fakeTasks) ListByProject(_ context.Context, projectID string) ([]model.TaskDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.TaskDetail{}
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, f.detail(t))
		}
	}
	return out, nil
}

func (f *fakeTasks) FindByID(_ context.Context, id string) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return model.Task{}, model.ErrTaskNotFound
	}
	return t, nil
}

func (f *fakeTasks) FindDetail(ctx context.Context, id string) (model.TaskDetail, error) {
	t, err := f.FindByID(ctx, id)
	if err != nil {
		return model.TaskDetail{}, err
	}
	return f.detail(t), nil
}

func (f *fakeTasks) Create(_ context.Context, t model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeTasks) Update(_ context.Context, id string, patch model.TaskPatch, at time.Time) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return model.Task{}, model.ErrTaskNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.ProjectID != nil {
		t.ProjectID = *patch.ProjectID
	}
	if patch.AssignedTo != nil {
		t.AssignedTo = *patch.AssignedTo
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.Attachments = append(t.Attachments, patch.Attachments...)
	t.UpdatedAt = at
	f.tasks[id] = t
	return t, nil
}

func (f *fakeTasks) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return model.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

type fakeSubTasks struct {
	mu       sync.Mutex
	subtasks map[string]model.SubTask
}

func newFakeSubTasks() *fakeSubTasks {
	return &fakeSubTasks{subtasks: make(map[string]model.SubTask)}
}

func (f *fakeSubTasks) byTask(taskID string) []model.SubTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SubTask
	for _, s := range f.subtasks {
		if s.TaskID == taskID {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeSubTasks) FindByID(_ context.Context, id string) (model.SubTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subtasks[id]
	if !ok {
		return model.SubTask{}, model.ErrSubTaskNotFound
	}
	return s, nil
}

func (f *fakeSubTasks) Create(_ context.Context, s model.SubTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subtasks[s.ID] = s
	return nil
}

func (f *fakeSubTasks) Update(_ context.Context, id string, title *string, completed *bool, at time.Time) (model.SubTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subtasks[id]
	if !ok {
		return model.SubTask{}, model.ErrSubTaskNotFound
	}
	if title != nil {
		s.Title = *title
	}
	if completed != nil {
		s.IsCompleted = *completed
	}
	s.UpdatedAt = at
	f.subtasks[id] = s
	return s, nil
}

func (f *fakeSubTasks) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subtasks[id]; !ok {
		return model.ErrSubTaskNotFound
	}
	delete(f.subtasks, id)
	return nil
}

type fakeNotes struct {
	mu    sync.Mutex
	notes map[string]model.ProjectNote
}

func newFakeNotes() *fakeNotes {
	return &fakeNotes{notes: make(map[string]model.ProjectNote)}
}

func noteDetail(n model.ProjectNote) model.NoteDetail {
	return model.NoteDetail{
		ID:        n.ID,
		Content:   n.Content,
		Project:   model.ProjectSummary{ID: n.ProjectID},
		CreatedBy: model.UserSummary{ID: n.CreatedBy},
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (f *fakeNotes) ListByProject(_ context.Context, projectID string) ([]model.NoteDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.NoteDetail{}
	for _, n := range f.notes {
		if n.ProjectID == projectID {
			out = append(out, noteDetail(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotes) FindDetail(ctx context.Context, id string) (model.NoteDetail, error) {
	n, err := f.FindByID(ctx, id)
	if err != nil {
		return model.NoteDetail{}, err
	}
	return noteDetail(n), nil
}

func (f *fakeNotes) FindByID(_ context.Context, id string) (model.ProjectNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return model.ProjectNote{}, model.ErrNoteNotFound
	}
	return n, nil
}

func (f *fakeNotes) Create(_ context.Context, n model.ProjectNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[n.ID] = n
	return nil
}

func (f *fakeNotes) Update(_ context.Context, id string, content string, at time.Time) (model.ProjectNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return model.ProjectNote{}, model.ErrNoteNotFound
	}
	n.Content = content
	n.UpdatedAt = at
	f.notes[id] = n
	return n, nil
}

func (f *fakeNotes) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.notes[id]; !ok {
		return model.ErrNoteNotFound
	}
	delete(f.notes, id)
	return nil
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []model.ActivityEntry
}

func (f *fakeActivity) Insert(_ context.Context, entry model.ActivityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeActivity) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeActivity) List(_ context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ActivityEntry{}
	for _, e := range f.entries {
		if e.ProjectID == query.ProjectID && (query.Action == "" || e.Action == query.Action) {
			out = append(out, e)
		}
	}
	return out, model.NewMeta(1, len(out), len(out)), nil
}

// recordingMailer keeps every delivered message.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last() mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mail.Message{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
