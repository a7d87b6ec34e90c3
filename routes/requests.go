package routes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"design-request-server/database"
	"design-request-server/models"
)

// RegisterRequestRoutes adds the design request lifecycle endpoints
func RegisterRequestRoutes(rg *gin.RouterGroup) {
	rg.POST("", CreateDesignRequest)
	rg.GET("/mine", GetMyRequests)
	rg.GET("/assigned", GetAssignedRequests)
	rg.GET("/:id", GetDesignRequest)
	rg.GET("/:id/feedback", GetRequestFeedback)
	rg.PATCH("/:id", EditDesignRequest)
	rg.POST("/:id/cancel", CancelDesignRequest)
	rg.POST("/:id/upload", UploadDesign)
	rg.POST("/:id/review", ReviewDesign)
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return 0, false
	}
	return uint(id), true
}

// CreateDesignRequest submits a new brief for approval
func CreateDesignRequest(c *gin.Context) {
	var input models.DesignRequestCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := lifecycleService.Submit(c.Request.Context(), currentActor(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	log.Printf("✅ Request %d submitted by user %d", request.ID, request.RequesterID)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"request": request,
	})
}

// GetMyRequests lists the authenticated requester's own requests
func GetMyRequests(c *gin.Context) {
	userID := c.GetUint("user_id")

	var requests []models.DesignRequest
	err := database.DB.Where("requester_id = ?", userID).
		Preload("Designer").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		log.Printf("❌ Error fetching requests for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": requests,
	})
}

// GetAssignedRequests lists the authenticated designer's active tasks
func GetAssignedRequests(c *gin.Context) {
	userID := c.GetUint("user_id")

	var requests []models.DesignRequest
	err := database.DB.Where("designer_id = ? AND status IN ?", userID, models.AssignedActiveStatuses).
		Preload("Requester").
		Order("deadline ASC").
		Find(&requests).Error
	if err != nil {
		log.Printf("❌ Error fetching assigned requests for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": requests,
	})
}

// GetDesignRequest returns one request. Requesters see their own, designers
// their assignments; approvers see everything.
func GetDesignRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	actor := currentActor(c)

	var request models.DesignRequest
	err := database.DB.Preload("Requester").Preload("Designer").First(&request, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}

	if !canViewRequest(actor, &request) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You may not view this request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"request": request,
	})
}

func canViewRequest(actor models.Actor, request *models.DesignRequest) bool {
	if actor.Role.IsApprover() {
		return true
	}
	if request.RequesterID == actor.ID {
		return true
	}
	return request.DesignerID != nil && *request.DesignerID == actor.ID
}

// GetRequestFeedback returns the feedback history for a request, per version
func GetRequestFeedback(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	actor := currentActor(c)

	var request models.DesignRequest
	if err := database.DB.First(&request, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}
	if !canViewRequest(actor, &request) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You may not view this request"})
		return
	}

	var feedback []models.Feedback
	err := database.DB.Where("request_id = ?", id).
		Order("version_no ASC, created_at ASC").
		Find(&feedback).Error
	if err != nil {
		log.Printf("❌ Error fetching feedback for request %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"feedback": feedback,
	})
}

// EditDesignRequest updates the brief while the request is still Submitted
func EditDesignRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var edit models.DesignRequestEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := lifecycleService.EditBrief(c.Request.Context(), currentActor(c), id, edit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"request": request,
	})
}

// CancelDesignRequest withdraws a Submitted request
func CancelDesignRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	request, err := lifecycleService.Cancel(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	log.Printf("🛑 Request %d canceled by user %d", id, c.GetUint("user_id"))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"request": request,
	})
}

// UploadDesign records a new design version from the assigned designer. The
// artifact itself is uploaded through /uploads first; this endpoint receives
// the resulting URL.
func UploadDesign(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input struct {
		ArtifactURL string `json:"artifact_url" binding:"required"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := lifecycleService.UploadDesign(c.Request.Context(), currentActor(c), id, input.ArtifactURL, input.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	log.Printf("✅ Request %d now at version %d, awaiting review", request.ID, request.VersionNo)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"request": request,
	})
}

// ReviewDesign applies the requester's verdict on an uploaded version
func ReviewDesign(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input struct {
		Outcome      string `json:"outcome" binding:"required"`
		FeedbackText string `json:"feedback_text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := lifecycleService.Review(c.Request.Context(), currentActor(c), id, input.FeedbackText, models.RequestStatus(input.Outcome))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"request": request,
	})
}
