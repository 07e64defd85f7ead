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

type MembershipRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewMembershipRepository(pool *pgxpool.Pool, logger *zap.Logger) *MembershipRepository {
	return &MembershipRepository{pool: pool, logger: logger}
}

// Create inserts a membership row. A second row for the same
// (project, user) pair violates the unique constraint and comes back
// as a conflict, never a silent duplicate.
func (r *MembershipRepository) Create(ctx context.Context, m *model.Membership) error {
	r.logger.Debug("Inserting membership",
		zap.Int("project_id", m.ProjectID),
		zap.Int("user_id", m.UserID),
		zap.String("role", string(m.Role)),
	)
	query := `
        INSERT INTO memberships (project_id, user_id, role)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, m.ProjectID, m.UserID, m.Role).
		Scan(&m.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return apperr.Conflict("user %d is already a member of project %d", m.UserID, m.ProjectID)
			case "23503":
				return apperr.NotFound("user", m.UserID)
			}
		}
		r.logger.Error("Failed to insert membership",
			zap.Error(err),
			zap.Int("project_id", m.ProjectID),
			zap.Int("user_id", m.UserID),
		)
		return err
	}
	return nil
}

// RoleFor returns the user's role in a project. The second return is
// false when no membership row exists.
func (r *MembershipRepository) RoleFor(ctx context.Context, projectID, userID int) (model.Role, bool, error) {
	query := `
        SELECT role
        FROM memberships
        WHERE project_id = $1 AND user_id = $2
    `
	var role model.Role
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, projectID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return role, true, nil
}

func (r *MembershipRepository) GetByID(ctx context.Context, id int) (*model.Membership, error) {
	query := `
        SELECT id, project_id, user_id, role
        FROM memberships
        WHERE id = $1
    `
	var m model.Membership
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("membership", id)
		}
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, id int, role model.Role) error {
	tag, err := querierFrom(ctx, r.pool).Exec(ctx,
		`UPDATE memberships SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("membership", id)
	}
	return nil
}

func (r *MembershipRepository) Delete(ctx context.Context, id int) error {
	tag, err := querierFrom(ctx, r.pool).Exec(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("membership", id)
	}
	return nil
}

// Member pairs a membership with the user it grants access to, for the
// project members listing.
type Member struct {
	MembershipID int        `json:"membership_id"`
	UserID       int        `json:"user_id"`
	Username     string     `json:"username"`
	Role         model.Role `json:"role"`
}

func (r *MembershipRepository) ListByProject(ctx context.Context, projectID int) ([]Member, error) {
	query := `
        SELECT m.id, m.user_id, u.username, m.role
        FROM memberships m
        JOIN users u ON u.id = m.user_id
        WHERE m.project_id = $1
        ORDER BY u.username
    `
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query members", zap.Error(err), zap.Int("project_id", projectID))
		return nil, err
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.MembershipID, &m.UserID, &m.Username, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ProjectIDsForUser returns the ids of every project the user belongs to.
func (r *MembershipRepository) ProjectIDsForUser(ctx context.Context, userID int) ([]int, error) {
	query := `
        SELECT project_id
        FROM memberships
        WHERE user_id = $1
    `
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, userID)
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
