package routes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"design-request-server/database"
	"design-request-server/models"
)

// RegisterNotificationRoutes adds the per-user notification endpoints
func RegisterNotificationRoutes(rg *gin.RouterGroup) {
	rg.GET("", GetNotifications)
	rg.GET("/unread-count", GetUnreadNotificationCount)
	rg.POST("/mark-read", MarkNotificationsRead)
	rg.POST("/mark-all-read", MarkAllNotificationsRead)
}

// GetNotifications lists the user's recent notifications, newest first
func GetNotifications(c *gin.Context) {
	userID := c.GetUint("user_id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	notifications, err := notificationService.ListRecent(c.Request.Context(), userID, limit)
	if err != nil {
		log.Printf("❌ Error fetching notifications for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
	})
}

// GetUnreadNotificationCount returns the user's unread badge count
func GetUnreadNotificationCount(c *gin.Context) {
	userID := c.GetUint("user_id")

	count, err := notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		log.Printf("❌ Error getting unread count for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get unread count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": count,
	})
}

// MarkNotificationsRead marks the given notifications as read. Broadcast
// events clear for the whole approver group.
func MarkNotificationsRead(c *gin.Context) {
	userID := c.GetUint("user_id")

	var input struct {
		IDs []uint `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := notificationService.MarkRead(c.Request.Context(), userID, input.IDs); err != nil {
		log.Printf("❌ Error marking notifications read for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notifications marked as read",
	})
}

// MarkAllNotificationsRead marks every unread notification of the user as read
func MarkAllNotificationsRead(c *gin.Context) {
	userID := c.GetUint("user_id")

	var unread []models.Notification
	err := database.DB.Where("recipient_id = ? AND read_at IS NULL", userID).Find(&unread).Error
	if err != nil {
		log.Printf("❌ Error loading unread notifications for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}
	if len(unread) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "No unread notifications"})
		return
	}

	ids := make([]uint, 0, len(unread))
	for _, n := range unread {
		ids = append(ids, n.ID)
	}

	if err := notificationService.MarkRead(c.Request.Context(), userID, ids); err != nil {
		log.Printf("❌ Error marking all notifications read for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked as read",
	})
}
