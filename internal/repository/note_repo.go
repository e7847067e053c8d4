package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-project-hub/internal/model"
)

const noteDetailSelect = `SELECT n.id, n.content, n.created_at, n.updated_at,
	        p.id, p.name, p.description,
	        u.id, u.username, u.full_name, u.email
	 FROM project_notes n
	 JOIN projects p ON p.id = n.project_id
	 JOIN users u ON u.id = n.created_by`

type NoteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

func scanNoteDetail(row pgx.Row) (model.NoteDetail, error) {
	var d model.NoteDetail
	err := row.Scan(&d.ID, &d.Content, &d.CreatedAt, &d.UpdatedAt,
		&d.Project.ID, &d.Project.Name, &d.Project.Description,
		&d.CreatedBy.ID, &d.CreatedBy.Username, &d.CreatedBy.FullName, &d.CreatedBy.Email)
	return d, err
}

func (r *NoteRepository) ListByProject(ctx context.Context, projectID string) ([]model.NoteDetail, error) {
	rows, err := r.pool.Query(ctx, noteDetailSelect+` WHERE n.project_id = $1 ORDER BY n.created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]model.NoteDetail, 0)
	for rows.Next() {
		d, err := scanNoteDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, d)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) FindDetail(ctx context.Context, id string) (model.NoteDetail, error) {
	d, err := scanNoteDetail(r.pool.QueryRow(ctx, noteDetailSelect+` WHERE n.id = $1`, id))
	if err != nil {
		return model.NoteDetail{}, wrapError("find note", err, model.ErrNoteNotFound)
	}
	return d, nil
}

func (r *NoteRepository) FindByID(ctx context.Context, id string) (model.ProjectNote, error) {
	var n model.ProjectNote
	err := r.pool.QueryRow(ctx,
		`SELECT id, project_id, content, created_by, created_at, updated_at FROM project_notes WHERE id = $1`, id).
		Scan(&n.ID, &n.ProjectID, &n.Content, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return model.ProjectNote{}, wrapError("find note", err, model.ErrNoteNotFound)
	}
	return n, nil
}

func (r *NoteRepository) Create(ctx context.Context, n model.ProjectNote) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO project_notes (id, project_id, content, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.ProjectID, n.Content, n.CreatedBy, n.CreatedAt, n.UpdatedAt)
	return wrapError("create note", err, model.ErrProjectNotFound)
}

func (r *NoteRepository) Update(ctx context.Context, id string, content string, at time.Time) (model.ProjectNote, error) {
	var n model.ProjectNote
	err := r.pool.QueryRow(ctx,
		`UPDATE project_notes SET content = $2, updated_at = $3 WHERE id = $1
		 RETURNING id, project_id, content, created_by, created_at, updated_at`, id, content, at).
		Scan(&n.ID, &n.ProjectID, &n.Content, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return model.ProjectNote{}, wrapError("update note", err, model.ErrNoteNotFound)
	}
	return n, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM project_notes WHERE id = $1`, id)
	if err != nil {
		return wrapError("delete note", err, model.ErrNoteNotFound)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNoteNotFound
	}
	return nil
}
