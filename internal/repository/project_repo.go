package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"projecthub/internal/model"
	"projecthub/pkg/apperr"
)

type ProjectRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(pool *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{pool: pool, logger: logger}
}

func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Inserting project",
		zap.Int("client_id", p.ClientID),
		zap.String("tag", p.Tag),
	)
	query := `
        INSERT INTO projects (client_id, tag, detailed_name, due_date, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query,
		p.ClientID, p.Tag, p.DetailedName, p.DueDate,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return apperr.Conflict("project tag %q already exists", p.Tag)
			case "23503":
				return apperr.NotFound("client", p.ClientID)
			}
		}
		r.logger.Error("Failed to insert project", zap.Error(err), zap.String("tag", p.Tag))
		return err
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, client_id, tag, detailed_name, due_date, created_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ClientID, &p.Tag, &p.DetailedName, &p.DueDate, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("project", id)
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	query := `
        UPDATE projects
        SET tag = $2, detailed_name = $3, due_date = $4
        WHERE id = $1
    `
	tag, err := querierFrom(ctx, r.pool).Exec(ctx, query, p.ID, p.Tag, p.DetailedName, p.DueDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("project tag %q already exists", p.Tag)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("project", p.ID)
	}
	return nil
}

// Delete removes a project; its tasks and memberships cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	tag, err := querierFrom(ctx, r.pool).Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("project", id)
	}
	r.logger.Info("Project deleted", zap.Int("project_id", id))
	return nil
}

// ListForMember returns the projects the user holds a membership in,
// newest first. Role is not filtered; every role sees the project.
func (r *ProjectRepository) ListForMember(ctx context.Context, userID int) ([]model.Project, error) {
	query := `
        SELECT p.id, p.client_id, p.tag, p.detailed_name, p.due_date, p.created_at
        FROM projects p
        JOIN memberships m ON m.project_id = p.id
        WHERE m.user_id = $1
        ORDER BY p.created_at DESC
    `
	return r.scanProjects(ctx, query, userID)
}

// ListForMemberByClient narrows ListForMember to one client.
func (r *ProjectRepository) ListForMemberByClient(ctx context.Context, userID, clientID int) ([]model.Project, error) {
	query := `
        SELECT p.id, p.client_id, p.tag, p.detailed_name, p.due_date, p.created_at
        FROM projects p
        JOIN memberships m ON m.project_id = p.id
        WHERE m.user_id = $1 AND p.client_id = $2
        ORDER BY p.created_at DESC
    `
	return r.scanProjects(ctx, query, userID, clientID)
}

func (r *ProjectRepository) scanProjects(ctx context.Context, query string, args ...any) ([]model.Project, error) {
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID, &p.ClientID, &p.Tag, &p.DetailedName, &p.DueDate, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
