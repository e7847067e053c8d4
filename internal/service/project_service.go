package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-project-hub/internal/event"
	"go-project-hub/internal/model"
)

type ProjectService struct {
	projects ProjectStore
	members  MemberStore
	users    UserLookup
	bus      event.Bus
	now      func() time.Time
}

func NewProjectService(projects ProjectStore, members MemberStore, users UserLookup, bus event.Bus) *ProjectService {
	return &ProjectService{
		projects: projects,
		members:  members,
		users:    users,
		bus:      bus,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Authorize allows global admins and members of the project.
func (s *ProjectService) Authorize(ctx context.Context, identity model.Identity, projectID string) error {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return err
	}
	if identity.Role == model.RoleAdmin {
		return nil
	}

	_, err := s.members.Find(ctx, projectID, identity.UserID)
	if errors.Is(err, model.ErrMemberNotFound) {
		return fmt.Errorf("not a member of project: %w", model.ErrForbidden)
	}
	return err
}

// AuthorizeManage allows global admins and project members holding a managing role.
func (s *ProjectService) AuthorizeManage(ctx context.Context, identity model.Identity, projectID string) error {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return err
	}
	if identity.Role == model.RoleAdmin {
		return nil
	}

	member, err := s.members.Find(ctx, projectID, identity.UserID)
	if errors.Is(err, model.ErrMemberNotFound) {
		return fmt.Errorf("not a member of project: %w", model.ErrForbidden)
	}
	if err != nil {
		return err
	}
	if !member.Role.CanManageProjects() {
		return fmt.Errorf("project role %s cannot manage: %w", member.Role, model.ErrForbidden)
	}
	return nil
}

// ProjectRole returns the role the identity holds inside the project. Global admins act as admin.
func (s *ProjectService) ProjectRole(ctx context.Context, identity model.Identity, projectID string) (model.Role, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return "", err
	}
	if identity.Role == model.RoleAdmin {
		return model.RoleAdmin, nil
	}

	member, err := s.members.Find(ctx, projectID, identity.UserID)
	if errors.Is(err, model.ErrMemberNotFound) {
		return "", fmt.Errorf("not a member of project: %w", model.ErrForbidden)
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

func (s *ProjectService) List(ctx context.Context, identity model.Identity) ([]model.ProjectListItem, error) {
	return s.projects.ListForUser(ctx, identity.UserID)
}

func (s *ProjectService) Get(ctx context.Context, identity model.Identity, projectID string) (model.Project, error) {
	if err := s.Authorize(ctx, identity, projectID); err != nil {
		return model.Project{}, err
	}
	return s.projects.FindByID(ctx, projectID)
}

// Create stores the project and makes the creator its project_admin.
func (s *ProjectService) Create(ctx context.Context, identity model.Identity, req model.CreateProjectRequest) (model.Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := req.Validate(); err != nil {
		return model.Project{}, model.NewValidationError(err)
	}

	now := s.now()
	project := model.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   identity.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	owner := model.ProjectMember{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		UserID:    identity.UserID,
		Role:      model.RoleProjectAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.projects.CreateWithOwner(ctx, project, owner); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.Project{}, fmt.Errorf("project name %q already exists: %w", req.Name, model.ErrConflict)
		}
		return model.Project{}, err
	}

	s.bus.Publish(event.New(event.TypeProjectCreated, project.ID, project.ID, identity.UserID, map[string]any{"name": project.Name}))
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, identity model.Identity, projectID string, req model.UpdateProjectRequest) (model.Project, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := req.Validate(); err != nil {
		return model.Project{}, model.NewValidationError(err)
	}
	if err := s.AuthorizeManage(ctx, identity, projectID); err != nil {
		return model.Project{}, err
	}

	project, err := s.projects.Update(ctx, projectID, req.Name, req.Description, s.now())
	if err != nil {
		return model.Project{}, err
	}

	s.bus.Publish(event.New(event.TypeProjectUpdated, project.ID, project.ID, identity.UserID, map[string]any{"name": project.Name}))
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, identity model.Identity, projectID string) error {
	if err := s.AuthorizeManage(ctx, identity, projectID); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}

	s.bus.Publish(event.New(event.TypeProjectDeleted, projectID, projectID, identity.UserID, nil))
	return nil
}

func (s *ProjectService) ListMembers(ctx context.Context, identity model.Identity, projectID string) ([]model.MemberDetail, error) {
	if err := s.Authorize(ctx, identity, projectID); err != nil {
		return nil, err
	}
	return s.members.ListByProject(ctx, projectID)
}

func (s *ProjectService) AddMember(ctx context.Context, identity model.Identity, projectID string, req model.AddMemberRequest) (model.ProjectMember, error) {
	if err := req.Validate(); err != nil {
		return model.ProjectMember{}, model.NewValidationError(err)
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return model.ProjectMember{}, err
	}
	if err := s.AuthorizeManage(ctx, identity, projectID); err != nil {
		return model.ProjectMember{}, err
	}
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return model.ProjectMember{}, err
	}

	now := s.now()
	member := model.ProjectMember{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.members.Add(ctx, member); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.ProjectMember{}, fmt.Errorf("user is already a member: %w", model.ErrConflict)
		}
		return model.ProjectMember{}, err
	}

	s.bus.Publish(event.New(event.TypeMemberAdded, projectID, req.UserID, identity.UserID, map[string]any{"role": role}))
	return member, nil
}

func (s *ProjectService) UpdateMemberRole(ctx context.Context, identity model.Identity, projectID string, userID string, req model.UpdateMemberRoleRequest) (model.ProjectMember, error) {
	if err := req.Validate(); err != nil {
		return model.ProjectMember{}, model.NewValidationError(err)
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return model.ProjectMember{}, err
	}
	if err := s.AuthorizeManage(ctx, identity, projectID); err != nil {
		return model.ProjectMember{}, err
	}

	member, err := s.members.UpdateRole(ctx, projectID, userID, role, s.now())
	if err != nil {
		return model.ProjectMember{}, err
	}

	s.bus.Publish(event.New(event.TypeMemberRoleUpdated, projectID, userID, identity.UserID, map[string]any{"role": role}))
	return member, nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, identity model.Identity, projectID string, userID string) error {
	if err := s.AuthorizeManage(ctx, identity, projectID); err != nil {
		return err
	}
	if err := s.members.Remove(ctx, projectID, userID); err != nil {
		return err
	}

	s.bus.Publish(event.New(event.TypeMemberRemoved, projectID, userID, identity.UserID, nil))
	return nil
}
