package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"projecthub/internal/model"
	"projecthub/pkg/apperr"
	"projecthub/pkg/metrics"
)

type TaskRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(pool *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{pool: pool, logger: logger}
}

func (r *TaskRepository) Create(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.Int("project_id", t.ProjectID),
		zap.Intp("parent_task_id", t.ParentTaskID),
	)
	query := `
        INSERT INTO tasks (project_id, parent_task_id, description, completed, due_date, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at
    `
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query,
		t.ProjectID, t.ParentTaskID, t.Description, t.Completed, t.DueDate,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperr.NotFound("project", t.ProjectID)
		}
		r.logger.Error("Failed to insert task", zap.Error(err), zap.Int("project_id", t.ProjectID))
		return err
	}
	r.logger.Info("Task inserted",
		zap.Int("task_id", t.ID),
		zap.Int("project_id", t.ProjectID),
	)
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int) (*model.Task, error) {
	query := `
        SELECT id, project_id, parent_task_id, description, completed, due_date, created_at
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&t.ID, &t.ProjectID, &t.ParentTaskID, &t.Description, &t.Completed, &t.DueDate, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("task", id)
		}
		return nil, err
	}
	return &t, nil
}

// Update writes the mutable scalar fields. Parent and project links are
// assigned at creation and never change.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `
        UPDATE tasks
        SET description = $2, completed = $3, due_date = $4
        WHERE id = $1
    `
	tag, err := querierFrom(ctx, r.pool).Exec(ctx, query, t.ID, t.Description, t.Completed, t.DueDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("task", t.ID)
	}
	return nil
}

// Delete removes a task and, via the self-referential cascade, its
// whole subtree.
func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	tag, err := querierFrom(ctx, r.pool).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("task", id)
	}
	r.logger.Info("Task deleted", zap.Int("task_id", id))
	return nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID int) ([]model.Task, error) {
	query := `
        SELECT id, project_id, parent_task_id, description, completed, due_date, created_at
        FROM tasks
        WHERE project_id = $1
        ORDER BY created_at
    `
	return r.scanTasks(ctx, query, projectID)
}

// ListByProjectIDs returns every task, root or nested, in the given
// projects.
func (r *TaskRepository) ListByProjectIDs(ctx context.Context, projectIDs []int) ([]model.Task, error) {
	if len(projectIDs) == 0 {
		return []model.Task{}, nil
	}
	query := `
        SELECT id, project_id, parent_task_id, description, completed, due_date, created_at
        FROM tasks
        WHERE project_id = ANY($1)
        ORDER BY created_at
    `
	return r.scanTasks(ctx, query, projectIDs)
}

// ListChildIDs returns the ids of the direct children of any of the
// given parents. One frontier step of the descendant traversal.
func (r *TaskRepository) ListChildIDs(ctx context.Context, parentIDs []int) ([]int, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	query := `
        SELECT id
        FROM tasks
        WHERE parent_task_id = ANY($1)
    `
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, parentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetCompleted overwrites the completed flag on every given task,
// regardless of its current value. Only the completed field is touched.
func (r *TaskRepository) SetCompleted(ctx context.Context, ids []int, completed bool) error {
	if len(ids) == 0 {
		return nil
	}
	start := time.Now()
	tag, err := querierFrom(ctx, r.pool).Exec(ctx,
		`UPDATE tasks SET completed = $2 WHERE id = ANY($1)`, ids, completed)
	if err != nil {
		r.logger.Error("Failed to set completed", zap.Error(err), zap.Ints("task_ids", ids))
		return err
	}
	metrics.RecordDBQueryDuration("update", "tasks", time.Since(start))
	r.logger.Info("Completion updated",
		zap.Int64("rows_affected", tag.RowsAffected()),
		zap.Bool("completed", completed),
	)
	return nil
}

func (r *TaskRepository) scanTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.ParentTaskID, &t.Description, &t.Completed, &t.DueDate, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
