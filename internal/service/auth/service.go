package auth

import (
	"context"
	"errors"

	"projecthub/internal/model"
	"projecthub/internal/util"
	"projecthub/pkg/apperr"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

type Service struct {
	users     UserStore
	jwtSecret string
}

func NewService(users UserStore, jwtSecret string) *Service {
	return &Service{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user.
func (s *Service) Register(ctx context.Context, username, password, firstName, lastName string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("username %q already exists", username)
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks user credentials and returns a JWT.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", errors.New("invalid username or password")
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", errors.New("invalid username or password")
	}

	return util.GenerateJWT(u.ID, s.jwtSecret)
}
