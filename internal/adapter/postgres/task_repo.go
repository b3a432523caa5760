package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blueprint/internal/domain"
)

type taskRow struct {
	ID          string    `db:"id"`
	ProjectID   string    `db:"project_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Priority    string    `db:"priority"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r taskRow) toDomain() domain.Task {
	return domain.Task{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

const taskColumns = "id, project_id, title, description, priority, status, created_at"

// CreateTasks stores a batch of tasks in one transaction.
func (d *DB) CreateTasks(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := d.sql.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)")
	if err != nil {
		return fmt.Errorf("preparing task insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.ProjectID, t.Title, t.Description, t.Priority, t.Status, t.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("inserting task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// CreateTask stores a single task.
func (d *DB) CreateTask(ctx context.Context, t domain.Task) error {
	return d.CreateTasks(ctx, []domain.Task{t})
}

// ListTasks returns a project's tasks ordered by creation time.
func (d *DB) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	var rows []taskRow
	if err := d.sql.SelectContext(ctx, &rows,
		"SELECT "+taskColumns+" FROM tasks WHERE project_id = $1 ORDER BY created_at, seq", projectID,
	); err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}

	out := make([]domain.Task, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// GetTask retrieves a task by ID.
func (d *DB) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return d.getTask(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
}

// UpdateTaskStatus sets a task's status and returns the updated task.
func (d *DB) UpdateTaskStatus(ctx context.Context, id, status string) (*domain.Task, error) {
	return d.getTask(ctx,
		"UPDATE tasks SET status = $2 WHERE id = $1 RETURNING "+taskColumns, id, status)
}

func (d *DB) getTask(ctx context.Context, query string, args ...any) (*domain.Task, error) {
	var row taskRow
	err := d.sql.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}
	t := row.toDomain()
	return &t, nil
}

// CountTasks summarises a project's tasks by status.
func (d *DB) CountTasks(ctx context.Context, projectID string) (domain.TaskCounts, error) {
	var row struct {
		Total      int `db:"total"`
		Done       int `db:"done"`
		InProgress int `db:"in_progress"`
	}
	err := d.sql.GetContext(ctx, &row, `
		SELECT COUNT(*)                                  AS total,
		       COUNT(*) FILTER (WHERE status = $2)       AS done,
		       COUNT(*) FILTER (WHERE status = $3)       AS in_progress
		FROM tasks WHERE project_id = $1`,
		projectID, domain.StatusDone, domain.StatusInProgress,
	)
	if err != nil {
		return domain.TaskCounts{}, fmt.Errorf("count tasks: %w", err)
	}
	return domain.TaskCounts{Total: row.Total, Done: row.Done, InProgress: row.InProgress}, nil
}
