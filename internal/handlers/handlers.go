// Package handlers maps the HTTP API onto the service layer.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seiyar26/ppt-template-manager/internal/services"
)

// respondError translates service errors into the uniform JSON error
// envelope. Unexpected errors are logged server-side and reported to the
// client with a generic message only.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	default:
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
