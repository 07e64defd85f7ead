package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecthub/internal/service/client"
	"projecthub/internal/service/project"
)

type ClientHandler struct {
	clients  *client.Service
	projects *project.Service
	logger   *zap.Logger
}

func NewClientHandler(clients *client.Service, projects *project.Service, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{clients: clients, projects: projects, logger: logger}
}

// List handles GET /clients. The default listing is membership-scoped;
// ?scope=all is the explicit administrative listing.
func (h *ClientHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	includeAll := c.Query("scope") == "all"
	clients, err := h.clients.List(c.Request.Context(), userID, includeAll)
	if err != nil {
		h.logger.Error("List clients failed", zap.Error(err), zap.Int("user_id", userID))
		respondError(c, err)
		return
	}

	payloads := []ClientPayload{}
	for _, cl := range clients {
		projects, err := h.projects.ListByClient(c.Request.Context(), userID, cl.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		payloads = append(payloads, ClientPayload{
			ID:        cl.ID,
			Name:      cl.Name,
			CreatedAt: cl.CreatedAt,
			Projects:  projects,
		})
	}
	c.JSON(http.StatusOK, gin.H{"clients": payloads})
}

// Create handles POST /clients
func (h *ClientHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	cl, err := h.clients.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

// Get handles GET /clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	clientID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	cl, err := h.clients.Get(c.Request.Context(), userID, clientID)
	if err != nil {
		respondError(c, err)
		return
	}

	projects, err := h.projects.ListByClient(c.Request.Context(), userID, clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ClientPayload{
		ID:        cl.ID,
		Name:      cl.Name,
		CreatedAt: cl.CreatedAt,
		Projects:  projects,
	})
}

// Update handles PUT /clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	clientID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	cl, err := h.clients.Update(c.Request.Context(), userID, clientID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// Delete handles DELETE /clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	clientID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	if err := h.clients.Delete(c.Request.Context(), userID, clientID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListProjects handles GET /clients/:id/projects
func (h *ClientHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	clientID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	projects, err := h.projects.ListByClient(c.Request.Context(), userID, clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}
