package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecthub/internal/service/project"
	"projecthub/internal/service/task"
)

type ProjectHandler struct {
	projects *project.Service
	tasks    *task.Service
	logger   *zap.Logger
}

func NewProjectHandler(projects *project.Service, tasks *task.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, tasks: tasks, logger: logger}
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projects, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("List projects failed", zap.Error(err), zap.Int("user_id", userID))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ClientID     int        `json:"client_id"`
		Tag          string     `json:"tag"`
		DetailedName string     `json:"detailed_name"`
		DueDate      *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.projects.Create(c.Request.Context(), userID, project.CreateInput{
		ClientID:     req.ClientID,
		Tag:          req.Tag,
		DetailedName: req.DetailedName,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get handles GET /projects/:id and returns the project with its
// members and full task forest.
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	p, err := h.projects.Get(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	members, err := h.projects.Members(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	tasks, err := h.tasks.ListByProject(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildProject(p, members, tasks))
}

// Update handles PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		Tag          *string    `json:"tag"`
		DetailedName *string    `json:"detailed_name"`
		DueDate      *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.projects.Update(c.Request.Context(), userID, projectID, project.UpdateInput{
		Tag:          req.Tag,
		DetailedName: req.DetailedName,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	if err := h.projects.Delete(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTasks handles GET /projects/:id/tasks
func (h *ProjectHandler) ListTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	tasks, err := h.tasks.ListByProject(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": BuildTaskForest(tasks)})
}

// CreateTask handles POST /projects/:id/tasks, the nested variant of
// task creation with the project taken from the path.
func (h *ProjectHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		Description  string     `json:"description"`
		DueDate      *time.Time `json:"due_date"`
		ParentTaskID *int       `json:"parent_task_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	t, err := h.tasks.Create(c.Request.Context(), userID, task.CreateInput{
		Description:  req.Description,
		DueDate:      req.DueDate,
		ProjectID:    &projectID,
		ParentTaskID: req.ParentTaskID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}
