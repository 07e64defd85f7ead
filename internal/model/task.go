package model

import "time"

// Task belongs to a project and optionally to a parent task, forming a
// forest of unbounded depth. ProjectID is always populated once the task
// is persisted: root tasks set it directly, subtasks inherit it from the
// parent at creation. Parent links are assigned once and never change,
// so the forest is acyclic by construction.
type Task struct {
	ID           int        `json:"id"`
	ProjectID    int        `json:"project_id"`
	ParentTaskID *int       `json:"parent_task_id"`
	Description  string     `json:"description"`
	Completed    bool       `json:"completed"`
	DueDate      *time.Time `json:"due_date"`
	CreatedAt    time.Time  `json:"created_at"`
}
