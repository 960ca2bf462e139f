package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/missionset/missionset/internal/common"
	"github.com/missionset/missionset/internal/server/models"
	"github.com/missionset/missionset/internal/server/services"
)

func (s *Server) handleListItems(c *gin.Context) {
	items, err := s.items.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": itemsJSON(items)})
}

// handleNewItemForm returns the form metadata: the allowed labels, plus the
// preselected label when entered through a module view.
func (s *Server) handleNewItemForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"labels":   common.AllowedLabels,
		"selected": c.Param("label"),
	})
}

func (s *Server) handleCreateItem(c *gin.Context) {
	input := itemInputFromForm(c)
	if label, ok := common.CanonicalLabel(c.Param("label")); ok {
		input.Labels = append(input.Labels, label)
	}

	item, err := s.items.Create(c.Request.Context(), input, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/data/%d", item.ID))
}

func (s *Server) handleViewItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	item, comments, err := s.items.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	commentsJSON := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		commentsJSON = append(commentsJSON, gin.H{
			"id":         comment.ID,
			"author":     comment.AuthorName,
			"content":    comment.Content,
			"created_at": comment.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"item":     itemJSON(item),
		"comments": commentsJSON,
	})
}

func (s *Server) handleEditItemForm(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	item, _, err := s.items.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item":   itemJSON(item),
		"labels": common.AllowedLabels,
	})
}

func (s *Server) handleEditItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	item, err := s.items.Edit(c.Request.Context(), id, itemInputFromForm(c), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/data/%d", item.ID))
}

// handleDeleteItem is the one mutation that never redirects to login:
// unauthenticated and unauthorized callers both get a forbidden status.
func (s *Server) handleDeleteItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	acting := currentUser(c)
	if acting == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := s.items.Delete(c.Request.Context(), id, acting); err != nil {
		s.respondError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/data")
}

func (s *Server) handleAddComment(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	content := c.PostForm("content")
	if _, err := s.items.AddComment(c.Request.Context(), id, content, currentUser(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/data/%d", id))
}

func (s *Server) handleModuleView(c *gin.Context) {
	label := c.Param("label")
	items, err := s.items.ListByLabel(c.Request.Context(), label)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"label": label, "items": itemsJSON(items)})
}

// --- helpers below ---

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}

func itemInputFromForm(c *gin.Context) *services.ItemInput {
	return &services.ItemInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Labels:      c.PostFormArray("labels"),
		Start:       c.PostForm("start_time"),
		End:         c.PostForm("end_time"),
	}
}

func itemJSON(item *models.Item) gin.H {
	return gin.H{
		"id":          item.ID,
		"title":       item.Title,
		"description": item.Description,
		"tags":        item.Tags,
		"labels":      item.Labels,
		"author":      item.Author,
		"created_at":  item.CreatedAt,
		"start_time":  item.StartTime,
		"end_time":    item.EndTime,
	}
}

func itemsJSON(items []*models.Item) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, itemJSON(item))
	}
	return out
}
