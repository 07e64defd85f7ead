package handler

import (
	"testing"

	"projecthub/internal/model"
)

func intp(v int) *int { return &v }

func TestBuildTaskForest(t *testing.T) {
	t.Run("Given a flat list Then subtasks nest only immediate children recursively", func(t *testing.T) {
		tasks := []model.Task{
			{ID: 1, ProjectID: 1, Description: "A"},
			{ID: 2, ProjectID: 1, ParentTaskID: intp(1), Description: "B"},
			{ID: 3, ProjectID: 1, ParentTaskID: intp(1), Description: "C"},
			{ID: 4, ProjectID: 1, ParentTaskID: intp(3), Description: "D"},
			{ID: 5, ProjectID: 1, Description: "E"},
		}

		forest := BuildTaskForest(tasks)
		if len(forest) != 2 {
			t.Fatalf("expected 2 roots, got %d", len(forest))
		}

		a := forest[0]
		if a.ID != 1 {
			t.Fatalf("expected root A first, got %d", a.ID)
		}
		if len(a.Subtasks) != 2 {
			t.Fatalf("expected A to have 2 immediate children, got %d", len(a.Subtasks))
		}
		var c *TaskPayload
		for i := range a.Subtasks {
			if a.Subtasks[i].ID == 3 {
				c = &a.Subtasks[i]
			}
			if a.Subtasks[i].ID == 4 {
				t.Error("grandchild D appeared as an immediate child of A")
			}
		}
		if c == nil {
			t.Fatal("child C missing under A")
		}
		if len(c.Subtasks) != 1 || c.Subtasks[0].ID != 4 {
			t.Error("expected D nested under C")
		}
	})

	t.Run("Given a subtree fetched without its parent Then the orphan surfaces as a root", func(t *testing.T) {
		tasks := []model.Task{
			{ID: 4, ProjectID: 1, ParentTaskID: intp(3), Description: "D"},
		}

		forest := BuildTaskForest(tasks)
		if len(forest) != 1 || forest[0].ID != 4 {
			t.Fatalf("expected lone task as root, got %+v", forest)
		}
	})

	t.Run("Given no tasks Then an empty non-nil forest", func(t *testing.T) {
		forest := BuildTaskForest(nil)
		if forest == nil || len(forest) != 0 {
			t.Errorf("expected empty forest, got %+v", forest)
		}
	})
}
