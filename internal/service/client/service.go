package client

import (
	"context"

	"go.uber.org/zap"

	"projecthub/internal/model"
	"projecthub/internal/service/policy"
	"projecthub/internal/service/visibility"
	"projecthub/pkg/apperr"
)

type Store interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id int) (*model.Client, error)
	Update(ctx context.Context, c *model.Client) error
	Delete(ctx context.Context, id int) error
}

type Service struct {
	store      Store
	policy     *policy.Evaluator
	visibility *visibility.Service
	logger     *zap.Logger
}

func NewService(store Store, pol *policy.Evaluator, vis *visibility.Service, logger *zap.Logger) *Service {
	return &Service{store: store, policy: pol, visibility: vis, logger: logger}
}

// Create persists a client owned by the creating user.
func (s *Service) Create(ctx context.Context, userID int, name string) (*model.Client, error) {
	if name == "" {
		return nil, apperr.Validation("client name is required")
	}
	c := &model.Client{
		Name:        name,
		OwnerUserID: userID,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Client created", zap.Int("client_id", c.ID), zap.Int("owner_user_id", userID))
	return c, nil
}

// Get returns a client by id. Client reads are open to any
// authenticated user.
func (s *Service) Get(ctx context.Context, userID, clientID int) (*model.Client, error) {
	c, err := s.store.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanAccessClient(userID, policy.ActionRead, c) {
		return nil, apperr.NotFound("client", clientID)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, userID, clientID int, name string) (*model.Client, error) {
	if name == "" {
		return nil, apperr.Validation("client name is required")
	}
	c, err := s.store.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanAccessClient(userID, policy.ActionWrite, c) {
		return nil, apperr.Forbidden(userID, "client:update")
	}
	c.Name = name
	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, userID, clientID int) error {
	c, err := s.store.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if !s.policy.CanAccessClient(userID, policy.ActionWrite, c) {
		return apperr.Forbidden(userID, "client:delete")
	}
	return s.store.Delete(ctx, c.ID)
}

// List returns the user's membership-scoped clients. includeAll is the
// explicit administrative listing that bypasses scoping; it is never
// the default.
func (s *Service) List(ctx context.Context, userID int, includeAll bool) ([]model.Client, error) {
	if includeAll {
		return s.visibility.AllClients(ctx)
	}
	return s.visibility.VisibleClients(ctx, userID)
}
