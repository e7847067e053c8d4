package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-project-hub/internal/model"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, req model.RegisterRequest, avatar *model.Upload, baseURL string) (model.PublicUser, error) {
	args := m.Called(req, avatar, baseURL)
	return args.Get(0).(model.PublicUser), args.Error(1)
}

func (m *mockAuthService) VerifyEmail(ctx context.Context, plain string) error {
	return m.Called(plain).Error(0)
}

func (m *mockAuthService) ResendVerification(ctx context.Context, req model.EmailRequest, baseURL string) error {
	return m.Called(req, baseURL).Error(0)
}

func (m *mockAuthService) Login(ctx context.Context, req model.LoginRequest, client string) (model.LoginResult, error) {
	args := m.Called(req, client)
	return args.Get(0).(model.LoginResult), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, identity model.Identity) error {
	return m.Called(identity).Error(0)
}

func (m *mockAuthService) RefreshAccessToken(ctx context.Context, presented string) (model.TokenPair, error) {
	args := m.Called(presented)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, identity model.Identity, req model.ChangePasswordRequest) error {
	return m.Called(identity, req).Error(0)
}

func (m *mockAuthService) CurrentUser(ctx context.Context, identity model.Identity) (model.PublicUser, error) {
	args := m.Called(identity)
	return args.Get(0).(model.PublicUser), args.Error(1)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, req model.EmailRequest, baseURL string) error {
	return m.Called(req, baseURL).Error(0)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, plain string, req model.ResetPasswordRequest) error {
	return m.Called(plain, req).Error(0)
}

type mockTaskService struct {
	mock.Mock
}

func (m *mockTaskService) List(ctx context.Context, identity model.Identity, projectID string) ([]model.TaskDetail, error) {
	args := m.Called(identity, projectID)
	return args.Get(0).([]model.TaskDetail), args.Error(1)
}

func (m *mockTaskService) Get(ctx context.Context, identity model.Identity, taskID string) (model.TaskDetail, error) {
	args := m.Called(identity, taskID)
	return args.Get(0).(model.TaskDetail), args.Error(1)
}

func (m *mockTaskService) Create(ctx context.Context, identity model.Identity, projectID string, req model.CreateTaskRequest, files []model.Upload, baseURL string) (model.Task, error) {
	args := m.Called(identity, projectID, req, files, baseURL)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *mockTaskService) Update(ctx context.Context, identity model.Identity, taskID string, req model.UpdateTaskRequest, files []model.Upload, baseURL string) (model.Task, error) {
	args := m.Called(identity, taskID, req, files, baseURL)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *mockTaskService) Delete(ctx context.Context, identity model.Identity, taskID string) error {
	return m.Called(identity, taskID).Error(0)
}

func (m *mockTaskService) CreateSubTask(ctx context.Context, identity model.Identity, taskID string, req model.CreateSubTaskRequest) (model.SubTask, error) {
	args := m.Called(identity, taskID, req)
	return args.Get(0).(model.SubTask), args.Error(1)
}

func (m *mockTaskService) UpdateSubTask(ctx context.Context, identity model.Identity, subtaskID string, req model.UpdateSubTaskRequest) (model.SubTask, error) {
	args := m.Called(identity, subtaskID, req)
	return args.Get(0).(model.SubTask), args.Error(1)
}

func (m *mockTaskService) DeleteSubTask(ctx context.Context, identity model.Identity, subtaskID string) error {
	return m.Called(identity, subtaskID).Error(0)
}

type stubActivity struct {
	got model.ActivityQuery
}

func (s *stubActivity) List(_ context.Context, _ model.Identity, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	s.got = query
	return []model.ActivityEntry{{ID: 1, ProjectID: query.ProjectID, Action: "task.created"}}, model.NewMeta(query.Page, query.Limit, 1), nil
}

type stubPinger struct {
	err error
}

func (s stubPinger) Health(context.Context) error { return s.err }
