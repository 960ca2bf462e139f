// Package web exposes the HTTP surface of the MissionSet server: the
// dashboard, item CRUD and comments, module views, free-text search,
// authentication, admin user management, and profiles.
//
// Views respond with JSON payloads; successful mutations redirect
// (see-other) to a canonical view and validation failures come back as a
// 400 with the form error.
package web

import (
	"github.com/gin-gonic/gin"
	"github.com/missionset/missionset/internal/logging"
	"github.com/missionset/missionset/internal/server/services"
)

// Server bundles the services the handlers delegate to.
type Server struct {
	logger    logging.Logger
	users     *services.UserService
	items     *services.ItemService
	profiles  *services.ProfileService
	dashboard *services.DashboardService
	search    *services.SearchService
}

// NewServer constructs the HTTP server facade.
func NewServer(
	logger logging.Logger,
	users *services.UserService,
	items *services.ItemService,
	profiles *services.ProfileService,
	dashboard *services.DashboardService,
	search *services.SearchService,
) *Server {
	return &Server{
		logger:    logger,
		users:     users,
		items:     items,
		profiles:  profiles,
		dashboard: dashboard,
		search:    search,
	}
}

// Router assembles the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(s.sessionUser())

	r.GET("/healthz", s.handleHealth)

	r.GET("/", s.handleDashboard)
	r.GET("/search", s.handleSearch)

	data := r.Group("/data")
	{
		data.GET("", s.handleListItems)
		data.GET("/new", s.requireUser(), s.handleNewItemForm)
		data.POST("/new", s.requireUser(), s.handleCreateItem)
		data.GET("/:id", s.handleViewItem)
		data.GET("/:id/edit", s.requireUser(), s.handleEditItemForm)
		data.POST("/:id/edit", s.requireUser(), s.handleEditItem)
		data.POST("/:id/delete", s.handleDeleteItem) // programmatic: 403, not redirect
		data.POST("/:id/comment", s.requireUser(), s.handleAddComment)
	}

	module := r.Group("/module")
	{
		module.GET("/:label", s.handleModuleView)
		module.GET("/:label/new", s.requireUser(), s.handleNewItemForm)
		module.POST("/:label/new", s.requireUser(), s.handleCreateItem)
	}

	auth := r.Group("/auth")
	{
		auth.GET("/login", s.handleLoginForm)
		auth.POST("/login", s.handleLogin)
		auth.GET("/register", s.handleRegisterForm)
		auth.POST("/register", s.handleRegister)
		auth.GET("/logout", s.handleLogout)
		auth.POST("/logout", s.handleLogout)
	}

	admin := r.Group("/admin", s.requireUser())
	{
		admin.GET("/users", s.handleListUsers)
		admin.GET("/users/new", s.handleRegisterForm)
		admin.POST("/users/new", s.handleRegister)
		admin.POST("/users/:id/toggle_admin", s.handleToggleAdmin)
		admin.POST("/users/:id/toggle_active", s.handleToggleActive)
	}

	profile := r.Group("/profile", s.requireUser())
	{
		profile.GET("", s.handleViewProfile)
		profile.POST("", s.handleSaveProfile)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
