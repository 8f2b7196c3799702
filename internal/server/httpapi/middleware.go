package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	userKey         = "user"
	requestIDKey    = "request_id"
)

// requestLogger tags each request with an id and logs it once it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()

		args := []any{
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			s.logger.Error(ctx, "request", args...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(ctx, "request", args...)
		default:
			s.logger.Info(ctx, "request", args...)
		}
	}
}

// requireUser rejects requests without a valid bearer token. Every
// credential failure gets the same 401 response; storage failures are 500.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "Could not validate credentials")
			return
		}

		user, err := s.users.ResolveToken(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.TokenType) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

// currentUser returns the user stored by requireUser.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}
