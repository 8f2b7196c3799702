package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/gin-gonic/gin"
)

func isUnauthorized(err error) bool {
	return errors.Is(err, common.ErrUnauthorized)
}

// abortWithError maps a service error to a status code. Unclassified errors
// become a generic 500 and are logged by requestLogger.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
	case errors.Is(err, common.ErrSizeMismatch):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Upload size does not match the content"})
	case errors.Is(err, common.ErrAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"detail": "Already exists"})
	case errors.Is(err, common.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found"})
	case isUnauthorized(err):
		unauthorized(c, "Could not validate credentials")
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

func validationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}
