package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projecthub/pkg/apperr"
)

// respondError maps the service error taxonomy onto HTTP statuses:
// validation 400, authorization 403, not-found 404, conflict 409,
// everything else (including cascade consistency failures) 500.
func respondError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.IsAuthorization(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// currentUserID reads the authenticated user id the auth middleware
// stored in the gin context.
func currentUserID(c *gin.Context) (int, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return 0, false
	}
	id, ok := v.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user_id"})
		return 0, false
	}
	return id, true
}
