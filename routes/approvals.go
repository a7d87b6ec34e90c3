package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"design-request-server/database"
	"design-request-server/models"
)

// RegisterApprovalRoutes adds the producer/management approval endpoints.
// The group is already guarded by RequireRoles for approver roles.
func RegisterApprovalRoutes(rg *gin.RouterGroup) {
	rg.GET("/pending", GetPendingApprovals)
	rg.GET("/designers", GetActiveDesigners)
	rg.POST("/:id/assign", AssignRequest)
	rg.POST("/:id/auto-assign", AutoAssignRequest)
	rg.POST("/:id/reject", RejectRequest)
}

// GetPendingApprovals lists every Submitted request awaiting a decision
func GetPendingApprovals(c *gin.Context) {
	var requests []models.DesignRequest
	err := database.DB.Where("status = ?", models.StatusSubmitted).
		Preload("Requester").
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		log.Printf("❌ Error fetching pending approvals: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": requests,
	})
}

// GetActiveDesigners lists assignable designers with their current workload
func GetActiveDesigners(c *gin.Context) {
	ctx := c.Request.Context()

	designers, err := store.ListActiveDesigners(ctx)
	if err != nil {
		log.Printf("❌ Error fetching designers: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch designers"})
		return
	}

	type designerWorkload struct {
		models.User
		Workload int64 `json:"workload"`
	}

	out := make([]designerWorkload, 0, len(designers))
	for _, designer := range designers {
		count, err := store.CountActiveAssignments(ctx, designer.ID, models.WorkloadStatuses)
		if err != nil {
			log.Printf("❌ Error counting workload for designer %d: %v", designer.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch designers"})
			return
		}
		out = append(out, designerWorkload{User: designer, Workload: count})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"designers": out,
	})
}

// AssignRequest approves a Submitted request for an explicitly chosen designer
func AssignRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input struct {
		DesignerID uint `json:"designer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := assignmentService.Assign(c.Request.Context(), currentActor(c), id, input.DesignerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	log.Printf("✅ Request %d approved and assigned to designer %d", id, input.DesignerID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"request": request,
	})
}

// AutoAssignRequest approves a Submitted request for the least-loaded active
// designer. A policy failure is a 200 with assigned=false and a reason; the
// operator falls back to manual assignment.
func AutoAssignRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	outcome, err := assignmentService.AutoAssign(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"outcome": outcome,
	})
}

// RejectRequest turns down a Submitted request
func RejectRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	request, err := lifecycleService.Reject(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	log.Printf("🛑 Request %d rejected by user %d", id, c.GetUint("user_id"))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"request": request,
	})
}
