package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"design-request-server/database"
	"design-request-server/models"
)

// RegisterAdminRoutes adds the admin user management endpoints. The group is
// already guarded by RequireRoles(ADMIN).
func RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", GetAllUsers)
	rg.PATCH("/users/:id/role", UpdateUserRole)
	rg.PATCH("/users/:id/status", UpdateUserStatus)
	rg.GET("/audit-logs", GetAuditLogs)
}

// GetAllUsers lists every account for the admin panel
func GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := database.DB.Order("id ASC").Find(&users).Error; err != nil {
		log.Printf("❌ Error fetching users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
	})
}

// UpdateUserRole changes a user's role and records the change in the audit log
func UpdateUserRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	changerID := c.GetUint("user_id")

	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newRole := models.UserRole(input.Role)
	probe := models.User{Role: newRole}
	if !probe.IsValidRole() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	if id == changerID {
		c.JSON(http.StatusConflict, gin.H{"error": "You cannot change your own role"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	oldRole := user.Role
	if oldRole == newRole {
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
		return
	}

	if err := database.DB.Model(&user).Update("role", newRole).Error; err != nil {
		log.Printf("❌ Error updating role for user %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	entry := models.AuditLogEntry{
		ChangerID:    changerID,
		TargetUserID: id,
		Action:       "ROLE_CHANGE",
		OldValue:     string(oldRole),
		NewValue:     string(newRole),
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		log.Printf("⚠️ Audit log write failed for role change on user %d: %v", id, err)
	}

	user.Role = newRole
	log.Printf("✅ User %d role changed %s -> %s by admin %d", id, oldRole, newRole, changerID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// UpdateUserStatus activates or deactivates an account and records the change
func UpdateUserStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	changerID := c.GetUint("user_id")

	var input struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if id == changerID {
		c.JSON(http.StatusConflict, gin.H{"error": "You cannot deactivate your own account"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	oldStatus := user.IsActive
	newStatus := *input.IsActive
	if oldStatus == newStatus {
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
		return
	}

	if err := database.DB.Model(&user).Update("is_active", newStatus).Error; err != nil {
		log.Printf("❌ Error updating status for user %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	entry := models.AuditLogEntry{
		ChangerID:    changerID,
		TargetUserID: id,
		Action:       "STATUS_CHANGE",
		OldValue:     statusLabel(oldStatus),
		NewValue:     statusLabel(newStatus),
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		log.Printf("⚠️ Audit log write failed for status change on user %d: %v", id, err)
	}

	user.IsActive = newStatus
	log.Printf("✅ User %d status changed to %s by admin %d", id, statusLabel(newStatus), changerID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

func statusLabel(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "INACTIVE"
}

// GetAuditLogs lists the administrative change history, newest first
func GetAuditLogs(c *gin.Context) {
	var entries []models.AuditLogEntry
	err := database.DB.Preload("Changer").Preload("TargetUser").
		Order("created_at DESC").
		Limit(200).
		Find(&entries).Error
	if err != nil {
		log.Printf("❌ Error fetching audit logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"audit_logs": entries,
	})
}
