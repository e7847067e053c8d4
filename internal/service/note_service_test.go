package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-project-hub/internal/model"
)

func TestNoteService(t *testing.T) {
	f := newWorkspaceFixture(nil)
	owner := f.user("owner", model.RoleMember)
	bob := f.user("bob", model.RoleMember)
	carol := f.user("carol", model.RoleMember)
	outsider := f.user("outsider", model.RoleMember)
	p := f.project(t, owner, "Apollo")
	f.join(t, owner, p.ID, bob, model.RoleMember)
	f.join(t, owner, p.ID, carol, model.RoleMember)
	ctx := context.Background()

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.noteSvc.now = clock.Now

	first, err := f.noteSvc.Create(ctx, bob, p.ID, model.NoteRequest{Content: "  first  "})
	require.NoError(t, err)
	assert.Equal(t, "first", first.Content)

	clock.Advance(time.Minute)
	second, err := f.noteSvc.Create(ctx, carol, p.ID, model.NoteRequest{Content: "second"})
	require.NoError(t, err)

	_, err = f.noteSvc.Create(ctx, outsider, p.ID, model.NoteRequest{Content: "hi"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.noteSvc.Create(ctx, bob, p.ID, model.NoteRequest{Content: "   "})
	assert.ErrorIs(t, err, model.ErrValidation)

	t.Run("lists newest first", func(t *testing.T) {
		notes, err := f.noteSvc.List(ctx, bob, p.ID)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, second.ID, notes[0].ID)
		assert.Equal(t, first.ID, notes[1].ID)
	})

	t.Run("author may edit", func(t *testing.T) {
		updated, err := f.noteSvc.Update(ctx, bob, first.ID, model.NoteRequest{Content: "edited"})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content)
	})

	t.Run("other members may not edit", func(t *testing.T) {
		_, err := f.noteSvc.Update(ctx, carol, first.ID, model.NoteRequest{Content: "hijack"})
		assert.ErrorIs(t, err, model.ErrForbidden)
		assert.ErrorIs(t, f.noteSvc.Delete(ctx, carol, first.ID), model.ErrForbidden)
	})

	t.Run("manager may delete any note", func(t *testing.T) {
		require.NoError(t, f.noteSvc.Delete(ctx, owner, second.ID))
		_, err := f.noteSvc.Get(ctx, owner, second.ID)
		assert.ErrorIs(t, err, model.ErrNoteNotFound)
	})

	t.Run("outsider cannot read", func(t *testing.T) {
		_, err := f.noteSvc.Get(ctx, outsider, first.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}
