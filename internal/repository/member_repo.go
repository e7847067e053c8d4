package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-project-hub/internal/model"
)

type MemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

func insertMember(ctx context.Context, q querier, m model.ProjectMember) error {
	_, err := q.Exec(ctx,
		`INSERT INTO project_members (id, project_id, user_id, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.ProjectID, m.UserID, m.Role, m.CreatedAt, m.UpdatedAt)
	return wrapError("add project member", err, model.ErrNotFound)
}

func (r *MemberRepository) ListByProject(ctx context.Context, projectID string) ([]model.MemberDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.role, m.created_at,
		        u.id, u.username, u.full_name, u.email,
		        p.id, p.name, p.description
		 FROM project_members m
		 JOIN users u ON u.id = m.user_id
		 JOIN projects p ON p.id = m.project_id
		 WHERE m.project_id = $1
		 ORDER BY m.created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	defer rows.Close()

	members := make([]model.MemberDetail, 0)
	for rows.Next() {
		var d model.MemberDetail
		if err := rows.Scan(&d.ID, &d.Role, &d.CreatedAt,
			&d.User.ID, &d.User.Username, &d.User.FullName, &d.User.Email,
			&d.Project.ID, &d.Project.Name, &d.Project.Description); err != nil {
			return nil, fmt.Errorf("scan project member: %w", err)
		}
		members = append(members, d)
	}
	return members, rows.Err()
}

func (r *MemberRepository) Find(ctx context.Context, projectID string, userID string) (model.ProjectMember, error) {
	var m model.ProjectMember
	err := r.pool.QueryRow(ctx,
		`SELECT id, project_id, user_id, role, created_at, updated_at
		 FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID).
		Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.ProjectMember{}, wrapError("find project member", err, model.ErrMemberNotFound)
	}
	return m, nil
}

func (r *MemberRepository) Add(ctx context.Context, m model.ProjectMember) error {
	return insertMember(ctx, r.pool, m)
}

func (r *MemberRepository) UpdateRole(ctx context.Context, projectID string, userID string, role model.Role, at time.Time) (model.ProjectMember, error) {
	var m model.ProjectMember
	err := r.pool.QueryRow(ctx,
		`UPDATE project_members SET role = $3, updated_at = $4
		 WHERE project_id = $1 AND user_id = $2
		 RETURNING id, project_id, user_id, role, created_at, updated_at`,
		projectID, userID, role, at).
		Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.ProjectMember{}, wrapError("update member role", err, model.ErrMemberNotFound)
	}
	return m, nil
}

func (r *MemberRepository) Remove(ctx context.Context, projectID string, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return wrapError("remove project member", err, model.ErrMemberNotFound)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMemberNotFound
	}
	return nil
}
