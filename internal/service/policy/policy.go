// Package policy decides, per request, whether a user may read or write
// an entity. Decisions are pure reads over membership state; denial is
// returned as false, never as an error, so callers translate it into a
// forbidden response themselves.
package policy

import (
	"context"

	"go.uber.org/zap"

	"projecthub/internal/model"
	"projecthub/pkg/metrics"
)

type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// MembershipReader resolves a user's role in a project. found is false
// when no membership row exists.
type MembershipReader interface {
	RoleFor(ctx context.Context, projectID, userID int) (role model.Role, found bool, err error)
}

type Evaluator struct {
	memberships MembershipReader
	logger      *zap.Logger
}

func NewEvaluator(memberships MembershipReader, logger *zap.Logger) *Evaluator {
	return &Evaluator{memberships: memberships, logger: logger}
}

// CanAccessClient: any authenticated user may read a client; only the
// owner may write it.
func (e *Evaluator) CanAccessClient(userID int, action Action, client *model.Client) bool {
	if action == ActionRead {
		return true
	}
	allowed := client.OwnerUserID == userID
	if !allowed {
		metrics.IncrementPolicyDenial("client", string(action))
	}
	return allowed
}

// CanAccessProject: any membership grants read; write requires the
// ADMIN role. Unresolvable membership denies.
func (e *Evaluator) CanAccessProject(ctx context.Context, userID, projectID int, action Action) (bool, error) {
	role, found, err := e.memberships.RoleFor(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	if !found {
		metrics.IncrementPolicyDenial("project", string(action))
		return false, nil
	}

	switch action {
	case ActionRead:
		return true, nil
	case ActionWrite:
		switch role {
		case model.RoleAdmin:
			return true, nil
		case model.RoleEditor, model.RoleViewer:
			metrics.IncrementPolicyDenial("project", string(action))
			return false, nil
		default:
			// Unknown role in the store denies rather than guesses.
			e.logger.Warn("Unknown membership role",
				zap.String("role", string(role)),
				zap.Int("project_id", projectID),
				zap.Int("user_id", userID),
			)
			return false, nil
		}
	default:
		return false, nil
	}
}

// CanManageMembers gates membership management on an ADMIN membership
// in the project taken from the request path. The check is independent
// of whichever membership row is being mutated; a missing project id in
// the route context resolves to deny, not an error.
func (e *Evaluator) CanManageMembers(ctx context.Context, userID, projectID int) (bool, error) {
	if projectID == 0 {
		return false, nil
	}
	role, found, err := e.memberships.RoleFor(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	if !found || role != model.RoleAdmin {
		metrics.IncrementPolicyDenial("membership", "manage")
		return false, nil
	}
	return true, nil
}

// CanAccessTask: any membership in the task's project allows both read
// and write. Task mutation is deliberately not role-gated beyond
// membership existence; VIEWER included.
func (e *Evaluator) CanAccessTask(ctx context.Context, userID int, task *model.Task) (bool, error) {
	_, found, err := e.memberships.RoleFor(ctx, task.ProjectID, userID)
	if err != nil {
		return false, err
	}
	if !found {
		metrics.IncrementPolicyDenial("task", "access")
	}
	return found, nil
}
