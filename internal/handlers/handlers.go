package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"compliancehub/internal/audit"
	"compliancehub/internal/auth"
	"compliancehub/internal/compliance"
	"compliancehub/internal/database"
	"compliancehub/internal/query"
	"compliancehub/internal/realtime"
	"compliancehub/internal/tracking"
)

// Handler serves the dashboard HTTP API.
type Handler struct {
	profiles *database.ProfileRepository
	policies *database.PolicyRepository
	tasks    *database.TaskRepository
	reports  *database.ReportRepository
	tracker  *tracking.Service
	sessions *auth.Manager
	audit    *audit.Logger
	hub      *realtime.Hub
	logger   *zap.Logger
}

// NewHandler creates the handler.
func NewHandler(
	profiles *database.ProfileRepository,
	policies *database.PolicyRepository,
	tasks *database.TaskRepository,
	reports *database.ReportRepository,
	tracker *tracking.Service,
	sessions *auth.Manager,
	auditLogger *audit.Logger,
	hub *realtime.Hub,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		profiles: profiles,
		policies: policies,
		tasks:    tasks,
		reports:  reports,
		tracker:  tracker,
		sessions: sessions,
		audit:    auditLogger,
		hub:      hub,
		logger:   logger,
	}
}

// RegisterRoutes wires all routes. Anonymous endpoints (login, register,
// report submission, tracker) stay ungated; everything else goes through the
// role gate.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
	}

	// Anonymous whistleblowing surface: no session required, by design.
	api.POST("/reports", h.SubmitReport)
	api.POST("/tracker", h.TrackReport)

	authed := api.Group("")
	authed.Use(auth.RequireRole(h.sessions))
	{
		authed.GET("/policies", h.ListPolicies)
		authed.GET("/policies/:id", h.GetPolicy)
		authed.POST("/policies/:id/acknowledge", h.AcknowledgePolicy)

		authed.GET("/tasks", h.ListTasks)
		authed.GET("/tasks/:id", h.GetTask)
		authed.POST("/tasks/:id/documents/toggle", h.ToggleDocument)
		authed.POST("/tasks/:id/submit", h.SubmitTask)
	}

	admin := api.Group("")
	admin.Use(auth.RequireRole(h.sessions, compliance.RoleAdmin))
	{
		admin.POST("/policies", h.CreatePolicy)
		admin.PUT("/policies/:id", h.UpdatePolicy)
		admin.DELETE("/policies/:id", h.DeletePolicy)

		admin.POST("/tasks", h.CreateTask)

		admin.GET("/reports", h.ListReports)
		admin.GET("/reports/:id", h.GetReport)
		admin.PUT("/reports/:id/status", h.UpdateReportStatus)

		admin.GET("/overview", h.Overview)
		admin.GET("/activities", h.RecentActivities)
	}

	router.GET("/ws/activity", auth.RequireRole(h.sessions), h.hub.HandleWebSocket)
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "compliance-hub",
		"timestamp": time.Now(),
	})
}

// respondError maps the domain error taxonomy onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	var validationErr *compliance.ValidationError
	var notFoundErr *compliance.NotFoundError
	var incompleteErr *compliance.IncompleteTaskError
	var collaboratorErr *compliance.CollaboratorError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &incompleteErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":    incompleteErr.Error(),
			"progress": incompleteErr.Progress,
		})
	case errors.As(err, &collaboratorErr):
		h.logger.Error("Collaborator failure", zap.String("op", collaboratorErr.Op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": collaboratorErr.Error()})
	default:
		h.logger.Error("Unexpected failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// querySpec parses the list-query parameters shared by the policy and
// report endpoints.
func querySpec(c *gin.Context) query.Spec {
	spec := query.Spec{
		Search:        c.Query("search"),
		Category:      c.DefaultQuery("category", query.All),
		Status:        c.DefaultQuery("status", query.All),
		SortField:     c.Query("sort_field"),
		SortDirection: query.Direction(c.DefaultQuery("sort_direction", string(query.Asc))),
	}
	if spec.SortDirection != query.Desc {
		spec.SortDirection = query.Asc
	}
	return spec
}
