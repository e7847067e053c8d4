package service

import (
	"context"
	"log/slog"
	"time"

	"go-project-hub/internal/event"
	"go-project-hub/internal/model"
)

const recordTimeout = 5 * time.Second

// ActivityService persists bus events as project activity and serves the log.
type ActivityService struct {
	store  ActivityStore
	access ProjectAccess
	bus    event.Bus
}

func NewActivityService(store ActivityStore, access ProjectAccess, bus event.Bus) *ActivityService {
	return &ActivityService{store: store, access: access, bus: bus}
}

// Run records events until ctx is cancelled or the subscription closes.
// On cancellation, events already buffered are still recorded.
func (s *ActivityService) Run(ctx context.Context) {
	events, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			s.drain(events)
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.record(e)
		}
	}
}

// drain records whatever is already buffered on the subscription.
func (s *ActivityService) drain(events <-chan event.Event) {
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			s.record(e)
		default:
			return
		}
	}
}

func (s *ActivityService) record(e event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	entry := model.ActivityEntry{
		ProjectID:  e.ProjectID,
		ActorID:    e.ActorID,
		Action:     string(e.Type),
		SubjectID:  e.SubjectID,
		Details:    e.Details,
		OccurredAt: e.Timestamp,
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		slog.Error("failed to record activity", "type", e.Type, "project_id", e.ProjectID, "error", err)
	}
}

func (s *ActivityService) List(ctx context.Context, identity model.Identity, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	if err := s.access.Authorize(ctx, identity, query.ProjectID); err != nil {
		return nil, model.Meta{}, err
	}
	return s.store.List(ctx, query)
}
