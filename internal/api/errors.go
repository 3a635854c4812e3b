package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resource-booking-backend/internal/logging"
	"resource-booking-backend/internal/service"
)

const invalidCredentialsMessage = "Unable to log in with provided credentials."

// respondError writes the status and body for err. Validation errors carry
// their field map; everything else is {"error": "..."}.
func respondError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, vErr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{service.NonFieldErrors: []string{invalidCredentialsMessage}})
	case errors.Is(err, service.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
	case errors.Is(err, service.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logging.Or(c.Request.Context(), nil).ErrorContext(c.Request.Context(), "request failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondBindError reports a body that is not valid JSON for the request type.
func respondBindError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}
