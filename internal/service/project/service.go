// Package project covers project lifecycle and membership management.
// The creator of a project is enrolled as its ADMIN member in the same
// transaction as the project row itself.
package project

import (
	"context"
	"time"

	"go.uber.org/zap"

	"projecthub/internal/model"
	"projecthub/internal/mq"
	"projecthub/internal/repository"
	"projecthub/internal/service/policy"
	"projecthub/internal/service/visibility"
	"projecthub/pkg/apperr"
	pkgmq "projecthub/pkg/mq"
)

type ProjectStore interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id int) (*model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id int) error
}

type MembershipStore interface {
	Create(ctx context.Context, m *model.Membership) error
	GetByID(ctx context.Context, id int) (*model.Membership, error)
	UpdateRole(ctx context.Context, id int, role model.Role) error
	Delete(ctx context.Context, id int) error
	ListByProject(ctx context.Context, projectID int) ([]repository.Member, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	projects    ProjectStore
	memberships MembershipStore
	tx          TxRunner
	policy      *policy.Evaluator
	visibility  *visibility.Service
	publisher   *pkgmq.Publisher
	logger      *zap.Logger
}

func NewService(
	projects ProjectStore,
	memberships MembershipStore,
	tx TxRunner,
	pol *policy.Evaluator,
	vis *visibility.Service,
	publisher *pkgmq.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:    projects,
		memberships: memberships,
		tx:          tx,
		policy:      pol,
		visibility:  vis,
		publisher:   publisher,
		logger:      logger,
	}
}

type CreateInput struct {
	ClientID     int
	Tag          string
	DetailedName string
	DueDate      *time.Time
}

// Create persists a project and auto-enrolls the creator as ADMIN, both
// in one transaction. The enrollment is a derived side effect, not an
// input.
func (s *Service) Create(ctx context.Context, userID int, in CreateInput) (*model.Project, error) {
	if in.Tag == "" {
		return nil, apperr.Validation("project tag is required")
	}
	if in.ClientID == 0 {
		return nil, apperr.Validation("client_id is required")
	}

	p := &model.Project{
		ClientID:     in.ClientID,
		Tag:          in.Tag,
		DetailedName: in.DetailedName,
		DueDate:      in.DueDate,
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.projects.Create(ctx, p); err != nil {
			return err
		}
		return s.memberships.Create(ctx, &model.Membership{
			ProjectID: p.ID,
			UserID:    userID,
			Role:      model.RoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	s.visibility.InvalidateUser(ctx, userID)
	s.logger.Info("Project created",
		zap.Int("project_id", p.ID),
		zap.String("tag", p.Tag),
		zap.Int("creator_id", userID),
	)

	if err := s.publisher.Publish(mq.RoutingKeyProjectCreated, mq.ProjectCreatedPayload{
		ProjectID: p.ID,
		ClientID:  p.ClientID,
		Tag:       p.Tag,
		CreatorID: userID,
		CreatedAt: p.CreatedAt,
	}); err != nil {
		s.logger.Warn("Failed to publish project event", zap.Error(err))
	}
	return p, nil
}

// Get returns a project the user is a member of. Non-members get the
// same not-found as a missing id.
func (s *Service) Get(ctx context.Context, userID, projectID int) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ok, err := s.policy.CanAccessProject(ctx, userID, projectID, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("project", projectID)
	}
	return p, nil
}

type UpdateInput struct {
	Tag          *string
	DetailedName *string
	DueDate      *time.Time
}

func (s *Service) Update(ctx context.Context, userID, projectID int, in UpdateInput) (*model.Project, error) {
	p, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	ok, err := s.policy.CanAccessProject(ctx, userID, projectID, policy.ActionWrite)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden(userID, "project:update")
	}

	if in.Tag != nil {
		if *in.Tag == "" {
			return nil, apperr.Validation("project tag cannot be empty")
		}
		p.Tag = *in.Tag
	}
	if in.DetailedName != nil {
		p.DetailedName = *in.DetailedName
	}
	if in.DueDate != nil {
		p.DueDate = in.DueDate
	}
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, userID, projectID int) error {
	if _, err := s.Get(ctx, userID, projectID); err != nil {
		return err
	}
	ok, err := s.policy.CanAccessProject(ctx, userID, projectID, policy.ActionWrite)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden(userID, "project:delete")
	}
	return s.projects.Delete(ctx, projectID)
}

func (s *Service) List(ctx context.Context, userID int) ([]model.Project, error) {
	return s.visibility.VisibleProjects(ctx, userID)
}

func (s *Service) ListByClient(ctx context.Context, userID, clientID int) ([]model.Project, error) {
	return s.visibility.VisibleProjectsByClient(ctx, userID, clientID)
}

// Members lists a project's members and is open to any project member,
// since member names appear in the project payload.
func (s *Service) Members(ctx context.Context, userID, projectID int) ([]repository.Member, error) {
	ok, err := s.policy.CanAccessProject(ctx, userID, projectID, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("project", projectID)
	}
	return s.memberships.ListByProject(ctx, projectID)
}

// requireManage resolves membership management authorization: a user
// who cannot even read the project sees not-found, a non-admin member
// is forbidden.
func (s *Service) requireManage(ctx context.Context, userID, projectID int) error {
	canRead, err := s.policy.CanAccessProject(ctx, userID, projectID, policy.ActionRead)
	if err != nil {
		return err
	}
	if !canRead {
		return apperr.NotFound("project", projectID)
	}
	ok, err := s.policy.CanManageMembers(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden(userID, "membership:manage")
	}
	return nil
}

// AddMember enrolls a user into a project. Only project ADMINs may
// manage membership; the check resolves the project from the request
// path, independent of the row being created.
func (s *Service) AddMember(ctx context.Context, actorID, projectID, targetUserID int, role model.Role) (*model.Membership, error) {
	if err := s.requireManage(ctx, actorID, projectID); err != nil {
		return nil, err
	}

	m := &model.Membership{
		ProjectID: projectID,
		UserID:    targetUserID,
		Role:      role,
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		return nil, err
	}

	s.visibility.InvalidateUser(ctx, targetUserID)
	s.logger.Info("Member added",
		zap.Int("project_id", projectID),
		zap.Int("user_id", targetUserID),
		zap.String("role", string(role)),
	)

	if err := s.publisher.Publish(mq.RoutingKeyMembershipAdded, mq.MembershipAddedPayload{
		ProjectID: projectID,
		UserID:    targetUserID,
		Role:      string(role),
		AddedBy:   actorID,
	}); err != nil {
		s.logger.Warn("Failed to publish membership event", zap.Error(err))
	}
	return m, nil
}

// UpdateMemberRole changes an existing member's role.
func (s *Service) UpdateMemberRole(ctx context.Context, actorID, projectID, membershipID int, role model.Role) (*model.Membership, error) {
	if err := s.requireManage(ctx, actorID, projectID); err != nil {
		return nil, err
	}

	m, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m.ProjectID != projectID {
		return nil, apperr.NotFound("membership", membershipID)
	}
	if err := s.memberships.UpdateRole(ctx, membershipID, role); err != nil {
		return nil, err
	}
	m.Role = role
	return m, nil
}

// RemoveMember revokes a membership and with it the user's access to
// the project.
func (s *Service) RemoveMember(ctx context.Context, actorID, projectID, membershipID int) error {
	if err := s.requireManage(ctx, actorID, projectID); err != nil {
		return err
	}

	m, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if m.ProjectID != projectID {
		return apperr.NotFound("membership", membershipID)
	}
	if err := s.memberships.Delete(ctx, membershipID); err != nil {
		return err
	}
	s.visibility.InvalidateUser(ctx, m.UserID)
	return nil
}
