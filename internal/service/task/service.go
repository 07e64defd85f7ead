// Package task implements task creation within the project/parent
// hierarchy and the completion cascade over the descendant forest.
package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"projecthub/internal/model"
	"projecthub/internal/mq"
	"projecthub/internal/service/policy"
	"projecthub/internal/service/visibility"
	"projecthub/pkg/apperr"
	"projecthub/pkg/metrics"
	pkgmq "projecthub/pkg/mq"
)

type Store interface {
	Create(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, id int) (*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id int) error
	ListByProject(ctx context.Context, projectID int) ([]model.Task, error)
	ListChildIDs(ctx context.Context, parentIDs []int) ([]int, error)
	SetCompleted(ctx context.Context, ids []int, completed bool) error
}

// TxRunner runs fn atomically; every store call made with the context
// it passes to fn belongs to the same transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	store      Store
	tx         TxRunner
	policy     *policy.Evaluator
	visibility *visibility.Service
	publisher  *pkgmq.Publisher
	logger     *zap.Logger
}

func NewService(
	store Store,
	tx TxRunner,
	pol *policy.Evaluator,
	vis *visibility.Service,
	publisher *pkgmq.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:      store,
		tx:         tx,
		policy:     pol,
		visibility: vis,
		publisher:  publisher,
		logger:     logger,
	}
}

type CreateInput struct {
	Description  string
	DueDate      *time.Time
	ProjectID    *int
	ParentTaskID *int
}

// Create persists a task. Root tasks name their project directly;
// subtasks name a parent and inherit its project, so the stored record
// always carries a project id. Supplying neither is a validation error;
// supplying both is accepted only when they agree.
func (s *Service) Create(ctx context.Context, userID int, in CreateInput) (*model.Task, error) {
	if in.Description == "" {
		return nil, apperr.Validation("description is required")
	}

	var projectID int
	switch {
	case in.ParentTaskID != nil:
		parent, err := s.store.GetByID(ctx, *in.ParentTaskID)
		if err != nil {
			return nil, err
		}
		ok, err := s.policy.CanAccessTask(ctx, userID, parent)
		if err != nil {
			return nil, err
		}
		if !ok {
			// An invisible parent reads the same as a missing one.
			return nil, apperr.NotFound("task", *in.ParentTaskID)
		}
		projectID = parent.ProjectID
		if in.ProjectID != nil && *in.ProjectID != projectID {
			return nil, apperr.Validation("project_id %d does not match parent task's project %d",
				*in.ProjectID, projectID)
		}
	case in.ProjectID != nil:
		projectID = *in.ProjectID
		ok, err := s.policy.CanAccessProject(ctx, userID, projectID, policy.ActionRead)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.NotFound("project", projectID)
		}
	default:
		return nil, apperr.Validation("either project_id or parent_task_id is required")
	}

	t := &model.Task{
		ProjectID:    projectID,
		ParentTaskID: in.ParentTaskID,
		Description:  in.Description,
		DueDate:      in.DueDate,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, userID, taskID int) (*model.Task, error) {
	t, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	ok, err := s.policy.CanAccessTask(ctx, userID, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("task", taskID)
	}
	return t, nil
}

// List returns every task in the user's visible projects, flattened.
func (s *Service) List(ctx context.Context, userID int) ([]model.Task, error) {
	return s.visibility.VisibleTasks(ctx, userID)
}

func (s *Service) ListByProject(ctx context.Context, userID, projectID int) ([]model.Task, error) {
	ok, err := s.policy.CanAccessProject(ctx, userID, projectID, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("project", projectID)
	}
	return s.store.ListByProject(ctx, projectID)
}

type UpdateInput struct {
	Description *string
	DueDate     *time.Time
	Completed   *bool
}

// Update writes plain task fields. A completed value, when present,
// goes through the cascade; description and due date changes never do.
func (s *Service) Update(ctx context.Context, userID, taskID int, in UpdateInput) (*model.Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if in.Description != nil || in.DueDate != nil {
		if in.Description != nil {
			if *in.Description == "" {
				return nil, apperr.Validation("description cannot be empty")
			}
			t.Description = *in.Description
		}
		if in.DueDate != nil {
			t.DueDate = in.DueDate
		}
		if err := s.store.Update(ctx, t); err != nil {
			return nil, err
		}
	}

	if in.Completed != nil {
		return s.updateCompletion(ctx, t, *in.Completed)
	}
	return t, nil
}

// UpdateCompletion sets the completed flag on a task and bulk-overwrites
// it on every transitive descendant, as one atomic unit.
func (s *Service) UpdateCompletion(ctx context.Context, userID, taskID int, completed bool) (*model.Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return s.updateCompletion(ctx, t, completed)
}

func (s *Service) updateCompletion(ctx context.Context, t *model.Task, completed bool) (*model.Task, error) {
	var descendants []int
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.SetCompleted(ctx, []int{t.ID}, completed); err != nil {
			return err
		}
		var err error
		descendants, err = s.collectDescendants(ctx, t.ID)
		if err != nil {
			return err
		}
		// Unconditional overwrite: descendants already in the target
		// state are written again rather than skipped.
		return s.store.SetCompleted(ctx, descendants, completed)
	})
	if err != nil {
		return nil, apperr.Consistency("completion cascade", err)
	}

	t.Completed = completed
	metrics.RecordCascadeSize(len(descendants))
	s.logger.Info("Completion cascade applied",
		zap.Int("task_id", t.ID),
		zap.Bool("completed", completed),
		zap.Int("descendants", len(descendants)),
	)

	if err := s.publisher.Publish(mq.RoutingKeyTaskCascaded, mq.TaskCascadedPayload{
		TaskID:          t.ID,
		ProjectID:       t.ProjectID,
		Completed:       completed,
		DescendantCount: len(descendants),
	}); err != nil {
		s.logger.Warn("Failed to publish cascade event", zap.Error(err))
	}
	return t, nil
}

// collectDescendants walks the parent-to-child relation breadth-first
// with an explicit work-list. Parent links are immutable after creation,
// so the forest is acyclic and no visited set is needed.
func (s *Service) collectDescendants(ctx context.Context, taskID int) ([]int, error) {
	var all []int
	frontier := []int{taskID}
	for len(frontier) > 0 {
		children, err := s.store.ListChildIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		all = append(all, children...)
		frontier = children
	}
	return all, nil
}

// Delete removes a task; the store cascades the whole subtree.
func (s *Service) Delete(ctx context.Context, userID, taskID int) error {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, t.ID)
}
