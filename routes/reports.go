package routes

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"design-request-server/database"
	"design-request-server/models"
)

// RegisterReportRoutes adds the management reporting endpoints. The group is
// already guarded by RequireRoles for approver roles.
func RegisterReportRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", GetDashboardStats)
	rg.GET("/full", GetFullReport)
	rg.GET("/export", ExportReportCSV)
}

// GetDashboardStats returns the headline counters for the dashboard
func GetDashboardStats(c *gin.Context) {
	statusCounts := map[string]int64{}
	for _, status := range []models.RequestStatus{
		models.StatusSubmitted, models.StatusApproved, models.StatusInProgress,
		models.StatusForReview, models.StatusRevision, models.StatusCompleted,
		models.StatusRejected, models.StatusCanceled,
	} {
		var count int64
		if err := database.DB.Model(&models.DesignRequest{}).Where("status = ?", status).Count(&count).Error; err != nil {
			log.Printf("❌ Error counting requests with status %s: %v", status, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
			return
		}
		statusCounts[string(status)] = count
	}

	var total int64
	database.DB.Model(&models.DesignRequest{}).Count(&total)

	var overdue int64
	database.DB.Model(&models.DesignRequest{}).
		Where("deadline < ? AND status IN ?", time.Now(), models.ActiveStatuses).
		Count(&overdue)

	var activeDesigners int64
	database.DB.Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleDesigner, true).
		Count(&activeDesigners)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"total_requests":   total,
			"by_status":        statusCounts,
			"overdue_active":   overdue,
			"active_designers": activeDesigners,
		},
	})
}

type categoryRevisionStat struct {
	Category     string  `json:"category"`
	Requests     int64   `json:"requests"`
	Revisions    int64   `json:"revisions"`
	AvgRevisions float64 `json:"avg_revisions"`
}

type revisionReport struct {
	TotalRequests  int64                  `json:"total_requests"`
	RevisionEvents int64                  `json:"revision_events"`
	AvgRevisions   float64                `json:"avg_revisions_per_request"`
	PerCategory    []categoryRevisionStat `json:"avg_revisions_per_category"`
}

// computeRevisionStats builds the revision-rate report. A revision event is
// one feedback row with status_change Revision, and every request counts
// toward the denominator regardless of its current status, so revisions on
// still-active requests show up immediately.
func computeRevisionStats(db *gorm.DB) (*revisionReport, error) {
	report := &revisionReport{}

	if err := db.Model(&models.DesignRequest{}).Count(&report.TotalRequests).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Feedback{}).
		Where("status_change = ?", models.StatusRevision).
		Count(&report.RevisionEvents).Error; err != nil {
		return nil, err
	}
	if report.TotalRequests > 0 {
		report.AvgRevisions = float64(report.RevisionEvents) / float64(report.TotalRequests)
	}

	type categoryCount struct {
		Category string
		Count    int64
	}

	var requestCounts []categoryCount
	if err := db.Model(&models.DesignRequest{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&requestCounts).Error; err != nil {
		return nil, err
	}

	var revisionCounts []categoryCount
	if err := db.Model(&models.Feedback{}).
		Select("requests.category AS category, COUNT(*) AS count").
		Joins("JOIN requests ON requests.id = feedback.request_id").
		Where("feedback.status_change = ?", models.StatusRevision).
		Group("requests.category").
		Scan(&revisionCounts).Error; err != nil {
		return nil, err
	}

	revisionsByCategory := make(map[string]int64, len(revisionCounts))
	for _, rc := range revisionCounts {
		revisionsByCategory[rc.Category] = rc.Count
	}

	report.PerCategory = make([]categoryRevisionStat, 0, len(requestCounts))
	for _, rc := range requestCounts {
		stat := categoryRevisionStat{
			Category:  rc.Category,
			Requests:  rc.Count,
			Revisions: revisionsByCategory[rc.Category],
		}
		if rc.Count > 0 {
			stat.AvgRevisions = float64(stat.Revisions) / float64(rc.Count)
		}
		report.PerCategory = append(report.PerCategory, stat)
	}

	return report, nil
}

// GetFullReport returns the revision statistics behind the exported report
func GetFullReport(c *gin.Context) {
	report, err := computeRevisionStats(database.DB)
	if err != nil {
		log.Printf("❌ Error computing revision report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}

// ExportReportCSV streams the full request table as a CSV download
func ExportReportCSV(c *gin.Context) {
	var requests []models.DesignRequest
	err := database.DB.Preload("Requester").Preload("Designer").
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		log.Printf("❌ Error loading requests for export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export report"})
		return
	}

	filename := fmt.Sprintf("Report_DesignHub_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	header := []string{"ID", "Title", "Category", "Status", "Requester", "Designer", "Version", "Deadline", "Created At"}
	if err := writer.Write(header); err != nil {
		log.Printf("❌ CSV header write failed: %v", err)
		return
	}

	for _, request := range requests {
		designer := ""
		if request.Designer != nil {
			designer = request.Designer.FullName
		}
		row := []string{
			strconv.FormatUint(uint64(request.ID), 10),
			request.Title,
			string(request.Category),
			string(request.Status),
			request.Requester.FullName,
			designer,
			strconv.Itoa(request.VersionNo),
			request.Deadline.Format(time.RFC3339),
			request.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			log.Printf("❌ CSV row write failed for request %d: %v", request.ID, err)
			return
		}
	}

	log.Printf("✅ Exported %d requests to %s", len(requests), filename)
}
