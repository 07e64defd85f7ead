package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"projecthub/internal/model"
	"projecthub/pkg/apperr"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (username, first_name, last_name, password_hash, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		u.Username,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
        SELECT id, username, first_name, last_name, password_hash, created_at
        FROM users
        WHERE username = $1
    `
	var u model.User
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user", 0)
		}
		return nil, err
	}
	return &u, nil
}

// List returns all users, for the member picker.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `
        SELECT id, username, first_name, last_name, password_hash, created_at
        FROM users
        ORDER BY username
    `
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
