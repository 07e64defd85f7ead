package handler

import (
	"time"

	"projecthub/internal/model"
	"projecthub/internal/repository"
)

// TaskPayload is a task with its immediate children nested under
// subtasks, recursively.
type TaskPayload struct {
	ID           int           `json:"id"`
	ProjectID    int           `json:"project_id"`
	ParentTaskID *int          `json:"parent_task_id"`
	Description  string        `json:"description"`
	Completed    bool          `json:"completed"`
	DueDate      *time.Time    `json:"due_date"`
	CreatedAt    time.Time     `json:"created_at"`
	Subtasks     []TaskPayload `json:"subtasks"`
}

// BuildTaskForest turns a flat task list into nested payloads. Children
// are grouped through a derived parent-to-children index, never linked
// by hand. Tasks whose parent is absent from the list (subtrees fetched
// alone) surface as roots.
func BuildTaskForest(tasks []model.Task) []TaskPayload {
	present := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		present[t.ID] = true
	}

	children := make(map[int][]model.Task)
	roots := []model.Task{}
	for _, t := range tasks {
		if t.ParentTaskID != nil && present[*t.ParentTaskID] {
			children[*t.ParentTaskID] = append(children[*t.ParentTaskID], t)
		} else {
			roots = append(roots, t)
		}
	}

	var build func(t model.Task) TaskPayload
	build = func(t model.Task) TaskPayload {
		p := TaskPayload{
			ID:           t.ID,
			ProjectID:    t.ProjectID,
			ParentTaskID: t.ParentTaskID,
			Description:  t.Description,
			Completed:    t.Completed,
			DueDate:      t.DueDate,
			CreatedAt:    t.CreatedAt,
			Subtasks:     []TaskPayload{},
		}
		for _, child := range children[t.ID] {
			p.Subtasks = append(p.Subtasks, build(child))
		}
		return p
	}

	out := []TaskPayload{}
	for _, root := range roots {
		out = append(out, build(root))
	}
	return out
}

type MemberPayload struct {
	MembershipID int    `json:"membership_id"`
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
}

func buildMembers(members []repository.Member) []MemberPayload {
	out := []MemberPayload{}
	for _, m := range members {
		out = append(out, MemberPayload{
			MembershipID: m.MembershipID,
			UserID:       m.UserID,
			Username:     m.Username,
			Role:         string(m.Role),
		})
	}
	return out
}

// ProjectPayload is a project with its members and full task forest.
type ProjectPayload struct {
	ID           int             `json:"id"`
	ClientID     int             `json:"client_id"`
	Tag          string          `json:"tag"`
	DetailedName string          `json:"detailed_name"`
	DueDate      *time.Time      `json:"due_date"`
	CreatedAt    time.Time       `json:"created_at"`
	Members      []MemberPayload `json:"members"`
	Tasks        []TaskPayload   `json:"tasks"`
}

func buildProject(p *model.Project, members []repository.Member, tasks []model.Task) ProjectPayload {
	return ProjectPayload{
		ID:           p.ID,
		ClientID:     p.ClientID,
		Tag:          p.Tag,
		DetailedName: p.DetailedName,
		DueDate:      p.DueDate,
		CreatedAt:    p.CreatedAt,
		Members:      buildMembers(members),
		Tasks:        BuildTaskForest(tasks),
	}
}

// ClientPayload is a client with the caller's visible projects.
type ClientPayload struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Projects  []model.Project `json:"projects"`
}
