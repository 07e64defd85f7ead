package client

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"projecthub/internal/model"
	"projecthub/internal/service/policy"
	"projecthub/internal/service/visibility"
	"projecthub/pkg/apperr"
)

type mockStore struct {
	clients map[int]*model.Client
	nextID  int
}

func newMockStore() *mockStore {
	return &mockStore{clients: map[int]*model.Client{}, nextID: 1}
}

func (m *mockStore) Create(_ context.Context, c *model.Client) error {
	c.ID = m.nextID
	m.nextID++
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id int) (*model.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, apperr.NotFound("client", id)
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) Update(_ context.Context, c *model.Client) error {
	if _, ok := m.clients[c.ID]; !ok {
		return apperr.NotFound("client", c.ID)
	}
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *mockStore) Delete(_ context.Context, id int) error {
	if _, ok := m.clients[id]; !ok {
		return apperr.NotFound("client", id)
	}
	delete(m.clients, id)
	return nil
}

func (m *mockStore) ListForMember(context.Context, int) ([]model.Client, error) {
	return nil, nil
}

func (m *mockStore) ListAll(_ context.Context) ([]model.Client, error) {
	out := []model.Client{}
	for _, c := range m.clients {
		out = append(out, *c)
	}
	return out, nil
}

type noMemberships struct{}

func (noMemberships) RoleFor(context.Context, int, int) (model.Role, bool, error) {
	return "", false, nil
}
func (noMemberships) ProjectIDsForUser(context.Context, int) ([]int, error) { return nil, nil }

type noProjects struct{}

func (noProjects) ListForMember(context.Context, int) ([]model.Project, error) { return nil, nil }
func (noProjects) ListForMemberByClient(context.Context, int, int) ([]model.Project, error) {
	return nil, nil
}

type noTasks struct{}

func (noTasks) ListByProjectIDs(context.Context, []int) ([]model.Task, error) { return nil, nil }

func newService(store *mockStore) *Service {
	logger := zap.NewNop()
	pol := policy.NewEvaluator(noMemberships{}, logger)
	vis := visibility.NewService(noMemberships{}, noProjects{}, store, noTasks{}, nil, logger)
	return NewService(store, pol, vis, logger)
}

func TestService_Ownership(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a created client Then the creator is its owner", func(t *testing.T) {
		s := newService(newMockStore())

		c, err := s.Create(ctx, 5, "acme")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if c.OwnerUserID != 5 {
			t.Errorf("expected owner 5, got %d", c.OwnerUserID)
		}
	})

	t.Run("Given a non-owner When updating Then forbidden", func(t *testing.T) {
		store := newMockStore()
		s := newService(store)
		c, _ := s.Create(ctx, 5, "acme")

		_, err := s.Update(ctx, 9, c.ID, "evil corp")
		if !apperr.IsAuthorization(err) {
			t.Errorf("expected authorization error, got %v", err)
		}
	})

	t.Run("Given the owner When updating Then allowed", func(t *testing.T) {
		store := newMockStore()
		s := newService(store)
		c, _ := s.Create(ctx, 5, "acme")

		updated, err := s.Update(ctx, 5, c.ID, "acme gmbh")
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Name != "acme gmbh" {
			t.Errorf("expected renamed client, got %q", updated.Name)
		}
	})

	t.Run("Given a non-owner When reading Then allowed", func(t *testing.T) {
		store := newMockStore()
		s := newService(store)
		c, _ := s.Create(ctx, 5, "acme")

		if _, err := s.Get(ctx, 9, c.ID); err != nil {
			t.Errorf("expected client reads to be open, got %v", err)
		}
	})

	t.Run("Given a non-owner When deleting Then forbidden and the client survives", func(t *testing.T) {
		store := newMockStore()
		s := newService(store)
		c, _ := s.Create(ctx, 5, "acme")

		if err := s.Delete(ctx, 9, c.ID); !apperr.IsAuthorization(err) {
			t.Errorf("expected authorization error, got %v", err)
		}
		if _, ok := store.clients[c.ID]; !ok {
			t.Error("client deleted despite denial")
		}
	})

	t.Run("Given an empty name Then a validation error", func(t *testing.T) {
		s := newService(newMockStore())

		if _, err := s.Create(ctx, 5, ""); !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
