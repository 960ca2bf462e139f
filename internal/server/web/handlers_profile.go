package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/missionset/missionset/internal/server/models"
)

func (s *Server) handleViewProfile(c *gin.Context) {
	profile, err := s.profiles.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile": gin.H{
			"name":          profile.Name,
			"birthday":      profile.Birthday,
			"blood_type":    profile.BloodType,
			"team":          profile.Team,
			"team_role":     profile.TeamRole,
			"phone":         profile.Phone,
			"email":         profile.Email,
			"contact_name":  profile.ContactName,
			"contact_phone": profile.ContactPhone,
			"updated_at":    profile.UpdatedAt,
		},
	})
}

func (s *Server) handleSaveProfile(c *gin.Context) {
	profile := &models.Profile{
		Name:         c.PostForm("name"),
		Birthday:     c.PostForm("birthday"),
		BloodType:    c.PostForm("blood_type"),
		Team:         c.PostForm("team"),
		TeamRole:     c.PostForm("team_role"),
		Phone:        c.PostForm("phone"),
		Email:        c.PostForm("email"),
		ContactName:  c.PostForm("contact_name"),
		ContactPhone: c.PostForm("contact_phone"),
	}
	if err := s.profiles.Save(c.Request.Context(), profile, currentUser(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/profile")
}
