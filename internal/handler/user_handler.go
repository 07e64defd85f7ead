package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecthub/internal/repository"
)

type UserHandler struct {
	users  *repository.UserRepository
	logger *zap.Logger
}

func NewUserHandler(users *repository.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// List handles GET /users, the read-only listing behind the member
// picker.
func (h *UserHandler) List(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.logger.Error("List users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
