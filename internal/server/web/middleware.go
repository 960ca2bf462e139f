package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/missionset/missionset/internal/common"
	"github.com/missionset/missionset/internal/server/models"
)

// ctxUserKey is the gin context key holding the resolved acting user.
const ctxUserKey = "user"

// loginPath is where unauthenticated page requests are sent.
const loginPath = "/auth/login"

// requestLogger tags every request with an id and logs method, path,
// status, and latency.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)

		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// sessionUser resolves the acting user from the session cookie, if any.
// Resolution failures leave the request anonymous; they never fail it.
func (s *Server) sessionUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(common.SessionCookieName)
		if err == nil && token != "" {
			if user, err := s.users.Resolve(c.Request.Context(), token); err == nil {
				c.Set(ctxUserKey, user)
			}
		}
		c.Next()
	}
}

// requireUser redirects unauthenticated callers to the login entry point.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUser returns the resolved acting user, or nil for anonymous
// requests.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// respondError maps service errors onto the HTTP surface: validation
// failures re-render as 400, missing targets as 404, authorization
// failures as 403, and unauthenticated calls as a redirect to login.
func (s *Server) respondError(c *gin.Context, err error) {
	var validationErr *common.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"kind":  string(validationErr.Kind),
		})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.Redirect(http.StatusSeeOther, loginPath)
	default:
		s.logger.Error(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
