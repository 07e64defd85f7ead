package model

import "fmt"

// Role is a closed set; the policy evaluator switches over it exhaustively.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// ParseRole validates a role coming in over the wire.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleEditor, RoleViewer:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Membership grants a user a role within a project. At most one
// membership exists per (project, user) pair; the store enforces it
// with a unique constraint.
type Membership struct {
	ID        int  `json:"id"`
	ProjectID int  `json:"project_id"`
	UserID    int  `json:"user_id"`
	Role      Role `json:"role"`
}
