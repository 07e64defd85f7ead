package auth

import (
	"context"
	"testing"

	"projecthub/internal/model"
	"projecthub/internal/util"
	"projecthub/pkg/apperr"
)

type mockUserStore struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: map[string]*model.User{}, nextID: 1}
}

func (m *mockUserStore) Create(_ context.Context, u *model.User) error {
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.users[u.Username] = &cp
	return nil
}

func (m *mockUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, apperr.NotFound("user", 0)
	}
	cp := *u
	return &cp, nil
}

const testSecret = "test-secret"

func TestService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a new username When registering and logging in Then a valid token comes back", func(t *testing.T) {
		s := NewService(newMockUserStore(), testSecret)

		u, err := s.Register(ctx, "alice", "s3cret", "Alice", "Smith")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if u.PasswordHash == "s3cret" {
			t.Error("password stored in plaintext")
		}

		token, err := s.Login(ctx, "alice", "s3cret")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		userID, err := util.ParseJWT(token, testSecret)
		if err != nil {
			t.Fatalf("token did not parse: %v", err)
		}
		if userID != u.ID {
			t.Errorf("expected token for user %d, got %d", u.ID, userID)
		}
	})

	t.Run("Given an existing username When registering again Then a conflict", func(t *testing.T) {
		s := NewService(newMockUserStore(), testSecret)
		if _, err := s.Register(ctx, "alice", "s3cret", "", ""); err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		_, err := s.Register(ctx, "alice", "other", "", "")
		if !apperr.IsConflict(err) {
			t.Errorf("expected conflict, got %v", err)
		}
	})

	t.Run("Given a wrong password Then login fails", func(t *testing.T) {
		s := NewService(newMockUserStore(), testSecret)
		if _, err := s.Register(ctx, "alice", "s3cret", "", ""); err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if _, err := s.Login(ctx, "alice", "wrong"); err == nil {
			t.Error("expected login to fail with wrong password")
		}
	})

	t.Run("Given an unknown user Then login fails the same way", func(t *testing.T) {
		s := NewService(newMockUserStore(), testSecret)

		if _, err := s.Login(ctx, "nobody", "s3cret"); err == nil {
			t.Error("expected login to fail for unknown user")
		}
	})

	t.Run("Given missing credentials Then a validation error", func(t *testing.T) {
		s := NewService(newMockUserStore(), testSecret)

		if _, err := s.Register(ctx, "", "s3cret", "", ""); !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
