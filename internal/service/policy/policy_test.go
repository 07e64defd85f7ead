package policy

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"projecthub/internal/model"
)

// MockMembershipReader resolves roles from an in-memory map keyed by
// (projectID, userID).
type MockMembershipReader struct {
	Roles map[[2]int]model.Role
	Err   error
}

func NewMockMembershipReader() *MockMembershipReader {
	return &MockMembershipReader{Roles: map[[2]int]model.Role{}}
}

func (m *MockMembershipReader) Grant(projectID, userID int, role model.Role) {
	m.Roles[[2]int{projectID, userID}] = role
}

func (m *MockMembershipReader) RoleFor(_ context.Context, projectID, userID int) (model.Role, bool, error) {
	if m.Err != nil {
		return "", false, m.Err
	}
	role, ok := m.Roles[[2]int{projectID, userID}]
	return role, ok, nil
}

func TestEvaluator_CanAccessClient(t *testing.T) {
	e := NewEvaluator(NewMockMembershipReader(), zap.NewNop())
	c := &model.Client{ID: 1, Name: "acme", OwnerUserID: 7}

	t.Run("Given any user When action is read Then allowed", func(t *testing.T) {
		if !e.CanAccessClient(99, ActionRead, c) {
			t.Error("expected read to be allowed for non-owner")
		}
	})

	t.Run("Given the owner When action is write Then allowed", func(t *testing.T) {
		if !e.CanAccessClient(7, ActionWrite, c) {
			t.Error("expected write to be allowed for owner")
		}
	})

	t.Run("Given a non-owner When action is write Then denied", func(t *testing.T) {
		if e.CanAccessClient(99, ActionWrite, c) {
			t.Error("expected write to be denied for non-owner")
		}
	})
}

func TestEvaluator_CanAccessProject(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a membership of any role When action is read Then allowed", func(t *testing.T) {
		for _, role := range []model.Role{model.RoleAdmin, model.RoleEditor, model.RoleViewer} {
			memberships := NewMockMembershipReader()
			memberships.Grant(1, 5, role)
			e := NewEvaluator(memberships, zap.NewNop())

			ok, err := e.CanAccessProject(ctx, 5, 1, ActionRead)
			if err != nil {
				t.Fatalf("CanAccessProject failed: %v", err)
			}
			if !ok {
				t.Errorf("expected read allowed for role %s", role)
			}
		}
	})

	t.Run("Given no membership When action is read Then denied", func(t *testing.T) {
		e := NewEvaluator(NewMockMembershipReader(), zap.NewNop())

		ok, err := e.CanAccessProject(ctx, 5, 1, ActionRead)
		if err != nil {
			t.Fatalf("CanAccessProject failed: %v", err)
		}
		if ok {
			t.Error("expected read denied without membership")
		}
	})

	t.Run("Given an ADMIN membership When action is write Then allowed", func(t *testing.T) {
		memberships := NewMockMembershipReader()
		memberships.Grant(1, 5, model.RoleAdmin)
		e := NewEvaluator(memberships, zap.NewNop())

		ok, err := e.CanAccessProject(ctx, 5, 1, ActionWrite)
		if err != nil {
			t.Fatalf("CanAccessProject failed: %v", err)
		}
		if !ok {
			t.Error("expected write allowed for ADMIN")
		}
	})

	t.Run("Given EDITOR or VIEWER When action is write Then denied", func(t *testing.T) {
		for _, role := range []model.Role{model.RoleEditor, model.RoleViewer} {
			memberships := NewMockMembershipReader()
			memberships.Grant(1, 5, role)
			e := NewEvaluator(memberships, zap.NewNop())

			ok, err := e.CanAccessProject(ctx, 5, 1, ActionWrite)
			if err != nil {
				t.Fatalf("CanAccessProject failed: %v", err)
			}
			if ok {
				t.Errorf("expected write denied for role %s", role)
			}
		}
	})

	t.Run("Given ADMIN on P1 only When checking P1 and P2 Then P1 allowed and P2 denied", func(t *testing.T) {
		memberships := NewMockMembershipReader()
		memberships.Grant(1, 5, model.RoleAdmin)
		e := NewEvaluator(memberships, zap.NewNop())

		ok, _ := e.CanAccessProject(ctx, 5, 1, ActionWrite)
		if !ok {
			t.Error("expected write allowed on P1")
		}
		ok, _ = e.CanAccessProject(ctx, 5, 2, ActionWrite)
		if ok {
			t.Error("expected write denied on P2")
		}
		ok, _ = e.CanAccessProject(ctx, 5, 2, ActionRead)
		if ok {
			t.Error("expected read denied on P2")
		}
	})

	t.Run("Given an unknown role in the store When action is write Then denied", func(t *testing.T) {
		memberships := NewMockMembershipReader()
		memberships.Grant(1, 5, model.Role("OWNER"))
		e := NewEvaluator(memberships, zap.NewNop())

		ok, err := e.CanAccessProject(ctx, 5, 1, ActionWrite)
		if err != nil {
			t.Fatalf("CanAccessProject failed: %v", err)
		}
		if ok {
			t.Error("expected unknown role to deny")
		}
	})

	t.Run("Given a store error Then the error propagates", func(t *testing.T) {
		memberships := NewMockMembershipReader()
		memberships.Err = errors.New("connection reset")
		e := NewEvaluator(memberships, zap.NewNop())

		if _, err := e.CanAccessProject(ctx, 5, 1, ActionRead); err == nil {
			t.Error("expected store error to propagate")
		}
	})
}

func TestEvaluator_CanManageMembers(t *testing.T) {
	ctx := context.Background()

	t.Run("Given an ADMIN membership Then allowed", func(t *testing.T) {
		memberships := NewMockMembershipReader()
		memberships.Grant(4, 5, model.RoleAdmin)
		e := NewEvaluator(memberships, zap.NewNop())

		ok, err := e.CanManageMembers(ctx, 5, 4)
		if err != nil {
			t.Fatalf("CanManageMembers failed: %v", err)
		}
		if !ok {
			t.Error("expected ADMIN to manage members")
		}
	})

	t.Run("Given an EDITOR membership Then denied", func(t *testing.T) {
		memberships := NewMockMembershipReader()
		memberships.Grant(4, 5, model.RoleEditor)
		e := NewEvaluator(memberships, zap.NewNop())

		ok, _ := e.CanManageMembers(ctx, 5, 4)
		if ok {
			t.Error("expected EDITOR to be denied")
		}
	})

	t.Run("Given no project id resolvable from the route Then denied not errored", func(t *testing.T) {
		memberships := NewMockMembershipReader()
		memberships.Grant(4, 5, model.RoleAdmin)
		e := NewEvaluator(memberships, zap.NewNop())

		ok, err := e.CanManageMembers(ctx, 5, 0)
		if err != nil {
			t.Fatalf("expected deny without error, got %v", err)
		}
		if ok {
			t.Error("expected deny when project id is missing")
		}
	})
}

func TestEvaluator_CanAccessTask(t *testing.T) {
	ctx := context.Background()
	task := &model.Task{ID: 10, ProjectID: 3}

	t.Run("Given any membership including VIEWER Then access allowed", func(t *testing.T) {
		for _, role := range []model.Role{model.RoleAdmin, model.RoleEditor, model.RoleViewer} {
			memberships := NewMockMembershipReader()
			memberships.Grant(3, 5, role)
			e := NewEvaluator(memberships, zap.NewNop())

			ok, err := e.CanAccessTask(ctx, 5, task)
			if err != nil {
				t.Fatalf("CanAccessTask failed: %v", err)
			}
			if !ok {
				t.Errorf("expected task access for role %s", role)
			}
		}
	})

	t.Run("Given no membership Then denied", func(t *testing.T) {
		e := NewEvaluator(NewMockMembershipReader(), zap.NewNop())

		ok, err := e.CanAccessTask(ctx, 5, task)
		if err != nil {
			t.Fatalf("CanAccessTask failed: %v", err)
		}
		if ok {
			t.Error("expected task access denied without membership")
		}
	})
}
