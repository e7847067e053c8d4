package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-project-hub/internal/event"
	"go-project-hub/internal/model"
)

type NoteService struct {
	notes  NoteStore
	access ProjectAccess
	bus    event.Bus
	now    func() time.Time
}

func NewNoteService(notes NoteStore, access ProjectAccess, bus event.Bus) *NoteService {
	return &NoteService{
		notes:  notes,
		access: access,
		bus:    bus,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns the project's notes, newest first.
func (s *NoteService) List(ctx context.Context, identity model.Identity, projectID string) ([]model.NoteDetail, error) {
	if err := s.access.Authorize(ctx, identity, projectID); err != nil {
		return nil, err
	}
	return s.notes.ListByProject(ctx, projectID)
}

func (s *NoteService) Get(ctx context.Context, identity model.Identity, noteID string) (model.NoteDetail, error) {
	note, err := s.notes.FindDetail(ctx, noteID)
	if err != nil {
		return model.NoteDetail{}, err
	}
	if err := s.access.Authorize(ctx, identity, note.Project.ID); err != nil {
		return model.NoteDetail{}, err
	}
	return note, nil
}

func (s *NoteService) Create(ctx context.Context, identity model.Identity, projectID string, req model.NoteRequest) (model.ProjectNote, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := req.Validate(); err != nil {
		return model.ProjectNote{}, model.NewValidationError(err)
	}
	if err := s.access.Authorize(ctx, identity, projectID); err != nil {
		return model.ProjectNote{}, err
	}

	now := s.now()
	note := model.ProjectNote{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Content:   req.Content,
		CreatedBy: identity.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return model.ProjectNote{}, err
	}

	s.bus.Publish(event.New(event.TypeNoteCreated, projectID, note.ID, identity.UserID, nil))
	return note, nil
}

func (s *NoteService) Update(ctx context.Context, identity model.Identity, noteID string, req model.NoteRequest) (model.ProjectNote, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := req.Validate(); err != nil {
		return model.ProjectNote{}, model.NewValidationError(err)
	}

	current, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return model.ProjectNote{}, err
	}
	if err := s.authorizeAuthorOrManager(ctx, identity, current); err != nil {
		return model.ProjectNote{}, err
	}

	note, err := s.notes.Update(ctx, noteID, req.Content, s.now())
	if err != nil {
		return model.ProjectNote{}, err
	}

	s.bus.Publish(event.New(event.TypeNoteUpdated, note.ProjectID, note.ID, identity.UserID, nil))
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, identity model.Identity, noteID string) error {
	current, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return err
	}
	if err := s.authorizeAuthorOrManager(ctx, identity, current); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return err
	}

	s.bus.Publish(event.New(event.TypeNoteDeleted, current.ProjectID, noteID, identity.UserID, nil))
	return nil
}

// Notes may be edited by their author while still a member, or by a project manager.
func (s *NoteService) authorizeAuthorOrManager(ctx context.Context, identity model.Identity, note model.ProjectNote) error {
	if note.CreatedBy == identity.UserID {
		return s.access.Authorize(ctx, identity, note.ProjectID)
	}
	return s.access.AuthorizeManage(ctx, identity, note.ProjectID)
}
