package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-project-hub/internal/model"
)

const subtaskColumns = `id, title, task_id, is_completed, created_by, created_at, updated_at`

type SubTaskRepository struct {
	pool *pgxpool.Pool
}

func NewSubTaskRepository(pool *pgxpool.Pool) *SubTaskRepository {
	return &SubTaskRepository{pool: pool}
}

func scanSubTask(row pgx.Row) (model.SubTask, error) {
	var s model.SubTask
	err := row.Scan(&s.ID, &s.Title, &s.TaskID, &s.IsCompleted, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func listSubTasks(ctx context.Context, q querier, taskID string) ([]model.SubTask, error) {
	rows, err := q.Query(ctx, `SELECT `+subtaskColumns+` FROM subtasks WHERE task_id = $1 ORDER BY created_at`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	subtasks := make([]model.SubTask, 0)
	for rows.Next() {
		s, err := scanSubTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		subtasks = append(subtasks, s)
	}
	return subtasks, rows.Err()
}

func (r *SubTaskRepository) FindByID(ctx context.Context, id string) (model.SubTask, error) {
	s, err := scanSubTask(r.pool.QueryRow(ctx, `SELECT `+subtaskColumns+` FROM subtasks WHERE id = $1`, id))
	if err != nil {
		return model.SubTask{}, wrapError("find subtask", err, model.ErrSubTaskNotFound)
	}
	return s, nil
}

func (r *SubTaskRepository) Create(ctx context.Context, s model.SubTask) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO subtasks (`+subtaskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Title, s.TaskID, s.IsCompleted, s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	return wrapError("create subtask", err, model.ErrTaskNotFound)
}

func (r *SubTaskRepository) Update(ctx context.Context, id string, title *string, completed *bool, at time.Time) (model.SubTask, error) {
	s, err := scanSubTask(r.pool.QueryRow(ctx,
		`UPDATE subtasks
		 SET title = COALESCE($2, title), is_completed = COALESCE($3, is_completed), updated_at = $4
		 WHERE id = $1
		 RETURNING `+subtaskColumns, id, title, completed, at))
	if err != nil {
		return model.SubTask{}, wrapError("update subtask", err, model.ErrSubTaskNotFound)
	}
	return s, nil
}

func (r *SubTaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	if err != nil {
		return wrapError("delete subtask", err, model.ErrSubTaskNotFound)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSubTaskNotFound
	}
	return nil
}
