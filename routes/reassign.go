package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"design-request-server/database"
	"design-request-server/models"
)

// RegisterReassignRoutes adds the reassignment endpoints for approver roles
func RegisterReassignRoutes(rg *gin.RouterGroup) {
	rg.GET("/active", GetActiveAssignments)
	rg.POST("/:id", ReassignRequest)
}

// GetActiveAssignments lists every request currently on a designer's desk,
// the pool a reassignment picks from.
func GetActiveAssignments(c *gin.Context) {
	var requests []models.DesignRequest
	err := database.DB.Where("designer_id IS NOT NULL AND status IN ?", models.AssignedActiveStatuses).
		Preload("Requester").
		Preload("Designer").
		Order("deadline ASC").
		Find(&requests).Error
	if err != nil {
		log.Printf("❌ Error fetching active assignments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch active assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": requests,
	})
}

// ReassignRequest moves an active request to a different designer
func ReassignRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input struct {
		NewDesignerID uint `json:"new_designer_id" binding:"required"`
		OldDesignerID uint `json:"old_designer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := assignmentService.Reassign(c.Request.Context(), currentActor(c), id, input.NewDesignerID, input.OldDesignerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	log.Printf("✅ Request %d reassigned from designer %d to %d", id, input.OldDesignerID, input.NewDesignerID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"request": request,
	})
}
