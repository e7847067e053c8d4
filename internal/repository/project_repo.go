package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-project-hub/internal/model"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// ListForUser returns every project the user belongs to, newest first.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]model.ProjectListItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, p.description, p.created_by, p.created_at, p.updated_at,
		        (SELECT COUNT(*) FROM project_members c WHERE c.project_id = p.id) AS members,
		        m.role
		 FROM projects p
		 JOIN project_members m ON m.project_id = p.id AND m.user_id = $1
		 ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]model.ProjectListItem, 0)
	for rows.Next() {
		var item model.ProjectListItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
			&item.Members, &item.Role); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (model.Project, error) {
	var p model.Project
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_by, created_at, updated_at FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Project{}, wrapError("find project", err, model.ErrProjectNotFound)
	}
	return p, nil
}

// CreateWithOwner inserts the project and its first project_admin membership atomically.
func (r *ProjectRepository) CreateWithOwner(ctx context.Context, p model.Project, owner model.ProjectMember) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO projects (id, name, description, created_by, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.Name, p.Description, p.CreatedBy, p.CreatedAt, p.UpdatedAt); err != nil {
			return wrapError("create project", err, model.ErrUserNotFound)
		}

		return insertMember(ctx, tx, owner)
	})
}

func (r *ProjectRepository) Update(ctx context.Context, id string, name *string, description *string, at time.Time) (model.Project, error) {
	var p model.Project
	err := r.pool.QueryRow(ctx,
		`UPDATE projects
		 SET name = COALESCE($2, name), description = COALESCE($3, description), updated_at = $4
		 WHERE id = $1
		 RETURNING id, name, description, created_by, created_at, updated_at`,
		id, name, description, at).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Project{}, wrapError("update project", err, model.ErrProjectNotFound)
	}
	return p, nil
}

// Delete removes the project; members, tasks, subtasks and notes cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return wrapError("delete project", err, model.ErrProjectNotFound)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProjectNotFound
	}
	return nil
}
