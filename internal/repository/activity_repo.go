package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-project-hub/internal/model"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Insert(ctx context.Context, entry model.ActivityEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_entries (project_id, actor_id, action, subject_id, details, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ProjectID, entry.ActorID, entry.Action, entry.SubjectID, details, entry.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert activity entry: %w", err)
	}
	return nil
}

// NormalizeActivityQuery clamps paging to 1-based pages of at most maxActivityLimit.
func NormalizeActivityQuery(query model.ActivityQuery) model.ActivityQuery {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultActivityLimit
	}
	if query.Limit > maxActivityLimit {
		query.Limit = maxActivityLimit
	}
	query.Action = strings.TrimSpace(query.Action)
	return query
}

func (r *ActivityRepository) List(ctx context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	query = NormalizeActivityQuery(query)

	where := []string{"project_id = $1"}
	args := []any{query.ProjectID}
	if query.Action != "" {
		args = append(args, query.Action)
		where = append(where, fmt.Sprintf("lower(action) = lower($%d)", len(args)))
	}
	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity_entries `+whereClause, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count activity entries: %w", err)
	}
	meta := model.NewMeta(query.Page, query.Limit, total)

	offset := (query.Page - 1) * query.Limit
	dataQuery := fmt.Sprintf(
		`SELECT id, project_id, actor_id, action, subject_id, details, occurred_at
		 FROM activity_entries %s
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`, whereClause, len(args)+1, len(args)+2)
	args = append(args, query.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query activity entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.ActivityEntry, 0)
	for rows.Next() {
		var e model.ActivityEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.ActorID, &e.Action, &e.SubjectID, &e.Details, &e.OccurredAt); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan activity entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, meta, rows.Err()
}
