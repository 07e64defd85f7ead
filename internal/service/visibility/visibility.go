// Package visibility computes the membership-scoped subset of clients,
// projects and tasks a user may list. It is consistent with the policy
// evaluator's read rules: an entity passes the read check iff it is in
// the corresponding visible set.
package visibility

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"projecthub/internal/model"
	"projecthub/pkg/metrics"
)

const cacheTTL = 2 * time.Minute

type MembershipReader interface {
	ProjectIDsForUser(ctx context.Context, userID int) ([]int, error)
}

type ProjectReader interface {
	ListForMember(ctx context.Context, userID int) ([]model.Project, error)
	ListForMemberByClient(ctx context.Context, userID, clientID int) ([]model.Project, error)
}

type ClientReader interface {
	ListForMember(ctx context.Context, userID int) ([]model.Client, error)
	ListAll(ctx context.Context) ([]model.Client, error)
}

type TaskReader interface {
	ListByProjectIDs(ctx context.Context, projectIDs []int) ([]model.Task, error)
}

type Service struct {
	memberships MembershipReader
	projects    ProjectReader
	clients     ClientReader
	tasks       TaskReader
	cache       *redis.Client // nil disables caching
	logger      *zap.Logger
}

func NewService(
	memberships MembershipReader,
	projects ProjectReader,
	clients ClientReader,
	tasks TaskReader,
	cache *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		memberships: memberships,
		projects:    projects,
		clients:     clients,
		tasks:       tasks,
		cache:       cache,
		logger:      logger,
	}
}

func cacheKey(userID int) string {
	return fmt.Sprintf("visibility:user:%d:projects", userID)
}

// VisibleProjectIDs returns exactly the ids of projects the user holds
// a membership in, cached briefly per user. Membership writes must call
// InvalidateUser.
func (s *Service) VisibleProjectIDs(ctx context.Context, userID int) ([]int, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey(userID)).Result()
		if err == nil {
			var ids []int
			if err := json.Unmarshal([]byte(raw), &ids); err == nil {
				metrics.IncrementVisibilityCache("hit")
				return ids, nil
			}
		}
		metrics.IncrementVisibilityCache("miss")
	}

	ids, err := s.memberships.ProjectIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(ids); err == nil {
			if err := s.cache.Set(ctx, cacheKey(userID), raw, cacheTTL).Err(); err != nil {
				s.logger.Warn("Failed to cache visible projects",
					zap.Int("user_id", userID),
					zap.Error(err),
				)
			}
		}
	}
	return ids, nil
}

// InvalidateUser drops the cached visible set after a membership or
// project write affecting the user.
func (s *Service) InvalidateUser(ctx context.Context, userID int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(userID)).Err(); err != nil {
		s.logger.Warn("Failed to invalidate visibility cache",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
	}
}

func (s *Service) VisibleProjects(ctx context.Context, userID int) ([]model.Project, error) {
	return s.projects.ListForMember(ctx, userID)
}

func (s *Service) VisibleProjectsByClient(ctx context.Context, userID, clientID int) ([]model.Project, error) {
	return s.projects.ListForMemberByClient(ctx, userID, clientID)
}

// VisibleClients returns the distinct clients referenced by the user's
// visible projects.
func (s *Service) VisibleClients(ctx context.Context, userID int) ([]model.Client, error) {
	return s.clients.ListForMember(ctx, userID)
}

// AllClients bypasses membership scoping. It backs the explicit
// administrative listing only and is never the default.
func (s *Service) AllClients(ctx context.Context) ([]model.Client, error) {
	return s.clients.ListAll(ctx)
}

// VisibleTasks returns every task, root or subtask, in the user's
// visible projects, flattened.
func (s *Service) VisibleTasks(ctx context.Context, userID int) ([]model.Task, error) {
	ids, err := s.VisibleProjectIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.tasks.ListByProjectIDs(ctx, ids)
}
