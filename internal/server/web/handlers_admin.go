package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.ListUsers(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":       u.ID,
			"username": u.Username,
			"admin":    u.IsAdmin,
			"active":   u.IsActive,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (s *Server) handleToggleAdmin(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	if err := s.users.ToggleAdmin(c.Request.Context(), id, currentUser(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/users")
}

func (s *Server) handleToggleActive(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	if err := s.users.ToggleActive(c.Request.Context(), id, currentUser(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/users")
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
