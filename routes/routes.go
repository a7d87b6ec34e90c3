package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"design-request-server/middleware"
	"design-request-server/models"
	"design-request-server/services"
)

var (
	store               *services.GormStore
	notificationService *services.NotificationService
	lifecycleService    *services.LifecycleService
	assignmentService   *services.AssignmentService
)

// InitServices wires the route handlers to the core services. publisher may
// be nil when WebSocket push is disabled.
func InitServices(db *gorm.DB, publisher services.Publisher) {
	store = services.NewGormStore(db)
	notificationService = services.NewNotificationService(store, publisher)
	lifecycleService = services.NewLifecycleService(store, notificationService)
	assignmentService = services.NewAssignmentService(store, lifecycleService, notificationService)
}

// RegisterRoutes registers every authenticated API route
func RegisterRoutes(api *gin.RouterGroup) {
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		requestRoutes := protected.Group("/requests")
		RegisterRequestRoutes(requestRoutes)

		approvalRoutes := protected.Group("/approvals")
		approvalRoutes.Use(middleware.RequireRoles(models.RoleProducer, models.RoleManagement, models.RoleAdmin))
		RegisterApprovalRoutes(approvalRoutes)

		reassignRoutes := protected.Group("/reassignments")
		reassignRoutes.Use(middleware.RequireRoles(models.RoleProducer, models.RoleManagement, models.RoleAdmin))
		RegisterReassignRoutes(reassignRoutes)

		notificationRoutes := protected.Group("/notifications")
		RegisterNotificationRoutes(notificationRoutes)

		uploadRoutes := protected.Group("/uploads")
		RegisterUploadRoutes(uploadRoutes)

		reportRoutes := protected.Group("/reports")
		reportRoutes.Use(middleware.RequireRoles(models.RoleProducer, models.RoleManagement, models.RoleAdmin))
		RegisterReportRoutes(reportRoutes)

		adminRoutes := protected.Group("/admin")
		adminRoutes.Use(middleware.RequireRoles(models.RoleAdmin))
		RegisterAdminRoutes(adminRoutes)
	}
}

// currentActor builds the acting identity from the authenticated context
func currentActor(c *gin.Context) models.Actor {
	return models.Actor{
		ID:   c.GetUint("user_id"),
		Role: c.MustGet("role").(models.UserRole),
	}
}

// respondServiceError translates core service errors into HTTP responses
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.IsPrecondition(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
