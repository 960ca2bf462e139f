package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/missionset/missionset/internal/search"
)

func (s *Server) handleDashboard(c *gin.Context) {
	stats, err := s.dashboard.ComputeStats(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	labels := make([]gin.H, 0, len(stats.LabelCounts))
	for _, lc := range stats.LabelCounts {
		labels = append(labels, gin.H{"label": lc.Label, "count": lc.Count})
	}
	daily := make([]gin.H, 0, len(stats.Daily))
	for _, dc := range stats.Daily {
		daily = append(daily, gin.H{"date": dc.Date, "count": dc.Count})
	}

	c.JSON(http.StatusOK, gin.H{
		"recent":       itemsJSON(stats.Recent),
		"label_counts": labels,
		"daily":        daily,
	})
}

// handleSearch renders the result list for the q parameter. A backend
// failure comes back as an empty list with an inline error message rather
// than a failed page.
func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	results, err := s.search.Search(c.Request.Context(), query)

	payload := gin.H{"query": query, "results": resultsJSON(results)}
	if err != nil {
		payload["error"] = "search is temporarily unavailable"
	}
	c.JSON(http.StatusOK, payload)
}

func resultsJSON(results []*search.Result) []gin.H {
	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		out = append(out, gin.H{
			"id":          r.ID,
			"title":       r.Title,
			"description": r.Description,
			"tags":        r.Tags,
			"created_at":  r.CreatedAt,
			"score":       r.Score,
		})
	}
	return out
}
