package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"folio/middleware"
)

// Deps are the collaborators the routes are wired to. Admin routes are
// mounted only when AdminSecret and Messages are both set.
type Deps struct {
	DB          Pinger
	Projects    ProjectStore
	Contact     ContactSubmitter
	Messages    ContactAdminStore
	AdminSecret string
	APIVersion  string
	RateLimiter *middleware.RateLimiter
}

// Register mounts the API under /api and, when a version is configured,
// under /api/<version> as well.
func Register(r *gin.Engine, deps Deps) {
	prefixes := []string{"/api"}
	if deps.APIVersion != "" {
		prefixes = append(prefixes, "/api/"+deps.APIVersion)
	}

	for _, prefix := range prefixes {
		api := r.Group(prefix)
		if deps.RateLimiter != nil {
			api.Use(deps.RateLimiter.Middleware())
		}

		api.GET("/health", HealthCheck(deps.DB))
		api.GET("/projects", ListProjects(deps.Projects))
		api.GET("/projects/stats", ProjectStats(deps.Projects))
		api.GET("/projects/:id", GetProject(deps.Projects))
		api.POST("/contact", SubmitContact(deps.Contact))

		if deps.AdminSecret != "" && deps.Messages != nil {
			admin := api.Group("/contact/messages", middleware.AdminAuth(deps.AdminSecret))
			admin.GET("", ListMessages(deps.Messages))
			admin.GET("/:id", GetMessage(deps.Messages))
			admin.PATCH("/:id", UpdateMessageStatus(deps.Messages))
		}
	}

	r.NoRoute(NotFound)
}

func NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, "Route not found",
		"The requested endpoint "+c.Request.URL.Path+" does not exist", nil)
}
