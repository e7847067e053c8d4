package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-project-hub/internal/model"
)

const taskColumns = `id, title, description, project_id, assigned_to, assigned_by, status, attachments, created_at, updated_at`

const taskDetailSelect = `SELECT t.id, t.title, t.description, t.status, t.attachments, t.created_at, t.updated_at,
	        ato.id, ato.username, ato.full_name, ato.email,
	        aby.id, aby.username, aby.full_name, aby.email,
	        p.id, p.name, p.description
	 FROM tasks t
	 JOIN users ato ON ato.id = t.assigned_to
	 JOIN users aby ON aby.id = t.assigned_by
	 JOIN projects p ON p.id = t.project_id`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.ProjectID, &t.AssignedTo, &t.AssignedBy, &t.Status,
		&t.Attachments, &t.CreatedAt, &t.UpdatedAt)
	if t.Attachments == nil {
		t.Attachments = []model.Attachment{}
	}
	return t, err
}

func scanTaskDetail(row pgx.Row) (model.TaskDetail, error) {
	var d model.TaskDetail
	err := row.Scan(&d.ID, &d.Title, &d.Description, &d.Status, &d.Attachments, &d.CreatedAt, &d.UpdatedAt,
		&d.AssignedTo.ID, &d.AssignedTo.Username, &d.AssignedTo.FullName, &d.AssignedTo.Email,
		&d.AssignedBy.ID, &d.AssignedBy.Username, &d.AssignedBy.FullName, &d.AssignedBy.Email,
		&d.Project.ID, &d.Project.Name, &d.Project.Description)
	if d.Attachments == nil {
		d.Attachments = []model.Attachment{}
	}
	return d, err
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]model.TaskDetail, error) {
	rows, err := r.pool.Query(ctx, taskDetailSelect+` WHERE t.project_id = $1 ORDER BY t.created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.TaskDetail, 0)
	for rows.Next() {
		d, err := scanTaskDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, d)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return model.Task{}, wrapError("find task", err, model.ErrTaskNotFound)
	}
	return t, nil
}

// FindDetail returns the joined task together with its subtasks.
func (r *TaskRepository) FindDetail(ctx context.Context, id string) (model.TaskDetail, error) {
	d, err := scanTaskDetail(r.pool.QueryRow(ctx, taskDetailSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return model.TaskDetail{}, wrapError("find task detail", err, model.ErrTaskNotFound)
	}

	subtasks, err := listSubTasks(ctx, r.pool, id)
	if err != nil {
		return model.TaskDetail{}, err
	}
	d.SubTasks = subtasks
	return d, nil
}

func (r *TaskRepository) Create(ctx context.Context, t model.Task) error {
	if t.Attachments == nil {
		t.Attachments = []model.Attachment{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.Title, t.Description, t.ProjectID, t.AssignedTo, t.AssignedBy, t.Status,
		t.Attachments, t.CreatedAt, t.UpdatedAt)
	return wrapError("create task", err, model.ErrNotFound)
}

// Update applies the non-nil patch fields; attachments are appended, never replaced.
func (r *TaskRepository) Update(ctx context.Context, id string, patch model.TaskPatch, at time.Time) (model.Task, error) {
	set := []string{"updated_at = $2"}
	args := []any{id, at}
	add := func(expr string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf(expr, len(args)))
	}

	if patch.Title != nil {
		add("title = $%d", *patch.Title)
	}
	if patch.Description != nil {
		add("description = $%d", *patch.Description)
	}
	if patch.ProjectID != nil {
		add("project_id = $%d", *patch.ProjectID)
	}
	if patch.AssignedTo != nil {
		add("assigned_to = $%d", *patch.AssignedTo)
	}
	if patch.Status != nil {
		add("status = $%d", string(*patch.Status))
	}
	if len(patch.Attachments) > 0 {
		add("attachments = attachments || $%d::jsonb", patch.Attachments)
	}

	query := `UPDATE tasks SET ` + strings.Join(set, ", ") + ` WHERE id = $1 RETURNING ` + taskColumns
	t, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Task{}, wrapError("update task", err, model.ErrTaskNotFound)
	}
	return t, nil
}

// Delete removes the task; its subtasks cascade.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return wrapError("delete task", err, model.ErrTaskNotFound)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}
