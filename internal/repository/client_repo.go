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

type ClientRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewClientRepository(pool *pgxpool.Pool, logger *zap.Logger) *ClientRepository {
	return &ClientRepository{pool: pool, logger: logger}
}

func (r *ClientRepository) Create(ctx context.Context, c *model.Client) error {
	r.logger.Debug("Inserting client",
		zap.String("name", c.Name),
		zap.Int("owner_user_id", c.OwnerUserID),
	)
	query := `
        INSERT INTO clients (name, owner_user_id, created_at)
        VALUES ($1, $2, NOW())
        RETURNING id, created_at
    `
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, c.Name, c.OwnerUserID).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("client name %q already exists", c.Name)
		}
		r.logger.Error("Failed to insert client", zap.Error(err), zap.String("name", c.Name))
		return err
	}
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id int) (*model.Client, error) {
	query := `
        SELECT id, name, owner_user_id, created_at
        FROM clients
        WHERE id = $1
    `
	var c model.Client
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.OwnerUserID, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("client", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *model.Client) error {
	query := `
        UPDATE clients
        SET name = $2
        WHERE id = $1
    `
	tag, err := querierFrom(ctx, r.pool).Exec(ctx, query, c.ID, c.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("client name %q already exists", c.Name)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("client", c.ID)
	}
	return nil
}

// Delete removes a client; projects and their tasks go with it via
// ON DELETE CASCADE.
func (r *ClientRepository) Delete(ctx context.Context, id int) error {
	tag, err := querierFrom(ctx, r.pool).Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("client", id)
	}
	r.logger.Info("Client deleted", zap.Int("client_id", id))
	return nil
}

// ListForMember returns the distinct clients referenced by the projects
// the user belongs to.
func (r *ClientRepository) ListForMember(ctx context.Context, userID int) ([]model.Client, error) {
	query := `
        SELECT DISTINCT c.id, c.name, c.owner_user_id, c.created_at
        FROM clients c
        JOIN projects p ON p.client_id = c.id
        JOIN memberships m ON m.project_id = p.id
        WHERE m.user_id = $1
        ORDER BY c.name
    `
	return r.scanClients(ctx, query, userID)
}

// ListAll returns every client, for the explicit administrative listing.
func (r *ClientRepository) ListAll(ctx context.Context) ([]model.Client, error) {
	query := `
        SELECT id, name, owner_user_id, created_at
        FROM clients
        ORDER BY name
    `
	return r.scanClients(ctx, query)
}

func (r *ClientRepository) scanClients(ctx context.Context, query string, args ...any) ([]model.Client, error) {
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query clients", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerUserID, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
