package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/missionset/missionset/internal/common"
)

// sessionCookieMaxAge keeps the cookie alive across browser restarts; the
// server-side session row is the real authority on expiry.
const sessionCookieMaxAge = 7 * 24 * 60 * 60

func (s *Server) handleLoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"form": "login"})
}

func (s *Server) handleLogin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, token, err := s.users.Login(c.Request.Context(), username, password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.SetCookie(common.SessionCookieName, token, sessionCookieMaxAge, "/", "", false, true)
	s.logger.Info(c.Request.Context(), "user logged in", "user_id", user.ID)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleRegisterForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"form": "register"})
}

// handleRegister serves both the public first-user bootstrap and the
// admin-only user creation under /admin/users/new. The service decides
// which case applies.
func (s *Server) handleRegister(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := s.users.Register(c.Request.Context(), username, password, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	if currentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, "/admin/users")
		return
	}
	s.logger.Info(c.Request.Context(), "first user registered", "user_id", user.ID)
	c.Redirect(http.StatusSeeOther, loginPath)
}

func (s *Server) handleLogout(c *gin.Context) {
	if token, err := c.Cookie(common.SessionCookieName); err == nil && token != "" {
		if err := s.users.Logout(c.Request.Context(), token); err != nil {
			s.logger.Warn(c.Request.Context(), "logout failed", "error", err)
		}
	}
	c.SetCookie(common.SessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, loginPath)
}
