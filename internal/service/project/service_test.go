package project

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"projecthub/internal/model"
	"projecthub/internal/repository"
	"projecthub/internal/service/policy"
	"projecthub/internal/service/visibility"
	"projecthub/pkg/apperr"
)

type mockProjectStore struct {
	projects map[int]*model.Project
	nextID   int
}

func newMockProjectStore() *mockProjectStore {
	return &mockProjectStore{projects: map[int]*model.Project{}, nextID: 1}
}

func (m *mockProjectStore) Create(_ context.Context, p *model.Project) error {
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *mockProjectStore) GetByID(_ context.Context, id int) (*model.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, apperr.NotFound("project", id)
	}
	cp := *p
	return &cp, nil
}

func (m *mockProjectStore) Update(_ context.Context, p *model.Project) error {
	if _, ok := m.projects[p.ID]; !ok {
		return apperr.NotFound("project", p.ID)
	}
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *mockProjectStore) Delete(_ context.Context, id int) error {
	if _, ok := m.projects[id]; !ok {
		return apperr.NotFound("project", id)
	}
	delete(m.projects, id)
	return nil
}

func (m *mockProjectStore) ListForMember(context.Context, int) ([]model.Project, error) {
	return nil, nil
}

func (m *mockProjectStore) ListForMemberByClient(context.Context, int, int) ([]model.Project, error) {
	return nil, nil
}

// mockMembershipStore keeps membership rows and enforces the
// (project, user) uniqueness the real store gets from its constraint.
type mockMembershipStore struct {
	rows   map[int]*model.Membership
	nextID int
}

func newMockMembershipStore() *mockMembershipStore {
	return &mockMembershipStore{rows: map[int]*model.Membership{}, nextID: 1}
}

func (m *mockMembershipStore) Create(_ context.Context, row *model.Membership) error {
	for _, existing := range m.rows {
		if existing.ProjectID == row.ProjectID && existing.UserID == row.UserID {
			return apperr.Conflict("user %d is already a member of project %d", row.UserID, row.ProjectID)
		}
	}
	row.ID = m.nextID
	m.nextID++
	cp := *row
	m.rows[row.ID] = &cp
	return nil
}

func (m *mockMembershipStore) GetByID(_ context.Context, id int) (*model.Membership, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("membership", id)
	}
	cp := *row
	return &cp, nil
}

func (m *mockMembershipStore) UpdateRole(_ context.Context, id int, role model.Role) error {
	row, ok := m.rows[id]
	if !ok {
		return apperr.NotFound("membership", id)
	}
	row.Role = role
	return nil
}

func (m *mockMembershipStore) Delete(_ context.Context, id int) error {
	if _, ok := m.rows[id]; !ok {
		return apperr.NotFound("membership", id)
	}
	delete(m.rows, id)
	return nil
}

func (m *mockMembershipStore) ListByProject(_ context.Context, projectID int) ([]repository.Member, error) {
	out := []repository.Member{}
	for _, row := range m.rows {
		if row.ProjectID == projectID {
			out = append(out, repository.Member{
				MembershipID: row.ID,
				UserID:       row.UserID,
				Role:         row.Role,
			})
		}
	}
	return out, nil
}

func (m *mockMembershipStore) RoleFor(_ context.Context, projectID, userID int) (model.Role, bool, error) {
	for _, row := range m.rows {
		if row.ProjectID == projectID && row.UserID == userID {
			return row.Role, true, nil
		}
	}
	return "", false, nil
}

func (m *mockMembershipStore) ProjectIDsForUser(_ context.Context, userID int) ([]int, error) {
	ids := []int{}
	for _, row := range m.rows {
		if row.UserID == userID {
			ids = append(ids, row.ProjectID)
		}
	}
	return ids, nil
}

type passTx struct{}

func (passTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noClients struct{}

func (noClients) ListForMember(context.Context, int) ([]model.Client, error) { return nil, nil }
func (noClients) ListAll(context.Context) ([]model.Client, error)            { return nil, nil }

type noTasks struct{}

func (noTasks) ListByProjectIDs(context.Context, []int) ([]model.Task, error) { return nil, nil }

type fixture struct {
	projects    *mockProjectStore
	memberships *mockMembershipStore
	service     *Service
}

func newFixture() *fixture {
	projects := newMockProjectStore()
	memberships := newMockMembershipStore()
	logger := zap.NewNop()
	pol := policy.NewEvaluator(memberships, logger)
	vis := visibility.NewService(memberships, projects, noClients{}, noTasks{}, nil, logger)
	return &fixture{
		projects:    projects,
		memberships: memberships,
		service:     NewService(projects, memberships, passTx{}, pol, vis, nil, logger),
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a new project When created Then the creator is auto-enrolled as ADMIN", func(t *testing.T) {
		f := newFixture()

		p, err := f.service.Create(ctx, 5, CreateInput{ClientID: 1, Tag: "CE023913_500_37 - ACME"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		role, found, _ := f.memberships.RoleFor(ctx, p.ID, 5)
		if !found {
			t.Fatal("expected creator membership to exist")
		}
		if role != model.RoleAdmin {
			t.Errorf("expected ADMIN, got %s", role)
		}
	})

	t.Run("Given an empty tag Then a validation error", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Create(ctx, 5, CreateInput{ClientID: 1})
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestService_Access(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a non-member When getting a project Then not-found, same as a missing id", func(t *testing.T) {
		f := newFixture()
		p, _ := f.service.Create(ctx, 5, CreateInput{ClientID: 1, Tag: "T1"})

		_, errInvisible := f.service.Get(ctx, 9, p.ID)
		_, errMissing := f.service.Get(ctx, 9, 9999)
		if !apperr.IsNotFound(errInvisible) || !apperr.IsNotFound(errMissing) {
			t.Fatalf("expected not-found for both, got %v / %v", errInvisible, errMissing)
		}
	})

	t.Run("Given an EDITOR member When updating the project Then forbidden", func(t *testing.T) {
		f := newFixture()
		p, _ := f.service.Create(ctx, 5, CreateInput{ClientID: 1, Tag: "T1"})
		if _, err := f.service.AddMember(ctx, 5, p.ID, 6, model.RoleEditor); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}

		tag := "T2"
		_, err := f.service.Update(ctx, 6, p.ID, UpdateInput{Tag: &tag})
		if !apperr.IsAuthorization(err) {
			t.Errorf("expected authorization error, got %v", err)
		}
	})

	t.Run("Given the ADMIN creator When updating Then allowed", func(t *testing.T) {
		f := newFixture()
		p, _ := f.service.Create(ctx, 5, CreateInput{ClientID: 1, Tag: "T1"})

		tag := "T2"
		updated, err := f.service.Update(ctx, 5, p.ID, UpdateInput{Tag: &tag})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Tag != "T2" {
			t.Errorf("expected tag T2, got %q", updated.Tag)
		}
	})
}

func TestService_Members(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a duplicate member When adding Then a conflict, not a silent duplicate", func(t *testing.T) {
		f := newFixture()
		p, _ := f.service.Create(ctx, 5, CreateInput{ClientID: 1, Tag: "T1"})
		if _, err := f.service.AddMember(ctx, 5, p.ID, 6, model.RoleViewer); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}

		_, err := f.service.AddMember(ctx, 5, p.ID, 6, model.RoleEditor)
		if !apperr.IsConflict(err) {
			t.Errorf("expected conflict, got %v", err)
		}
	})

	t.Run("Given a non-admin member When adding a member Then forbidden", func(t *testing.T) {
		f := newFixture()
		p, _ := f.service.Create(ctx, 5, CreateInput{ClientID: 1, Tag: "T1"})
		if _, err := f.service.AddMember(ctx, 5, p.ID, 6, model.RoleEditor); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}

		_, err := f.service.AddMember(ctx, 6, p.ID, 7, model.RoleViewer)
		if !apperr.IsAuthorization(err) {
			t.Errorf("expected authorization error, got %v", err)
		}
	})

	t.Run("Given a non-member actor When adding a member Then not-found", func(t *testing.T) {
		f := newFixture()
		p, _ := f.service.Create(ctx, 5, CreateInput{ClientID: 1, Tag: "T1"})

		_, err := f.service.AddMember(ctx, 9, p.ID, 7, model.RoleViewer)
		if !apperr.IsNotFound(err) {
			t.Errorf("expected not-found, got %v", err)
		}
	})

	t.Run("Given a membership from another project When updating through this project's route Then not-found", func(t *testing.T) {
		f := newFixture()
		p1, _ := f.service.Create(ctx, 5, CreateInput{ClientID: 1, Tag: "T1"})
		p2, _ := f.service.Create(ctx, 5, CreateInput{ClientID: 1, Tag: "T2"})
		m, err := f.service.AddMember(ctx, 5, p2.ID, 6, model.RoleViewer)
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}

		_, err = f.service.UpdateMemberRole(ctx, 5, p1.ID, m.ID, model.RoleEditor)
		if !apperr.IsNotFound(err) {
			t.Errorf("expected not-found for cross-project membership, got %v", err)
		}
	})

	t.Run("Given an admin When removing a member Then the member loses the project", func(t *testing.T) {
		f := newFixture()
		p, _ := f.service.Create(ctx, 5, CreateInput{ClientID: 1, Tag: "T1"})
		m, _ := f.service.AddMember(ctx, 5, p.ID, 6, model.RoleViewer)

		if err := f.service.RemoveMember(ctx, 5, p.ID, m.ID); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		if _, err := f.service.Get(ctx, 6, p.ID); !apperr.IsNotFound(err) {
			t.Errorf("expected removed member to lose visibility, got %v", err)
		}
	})
}
