package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"design-request-server/config"
	"design-request-server/database"
	"design-request-server/models"
	"design-request-server/services"
)

// DeadlineJob reminds designers about active requests whose deadline is
// inside the warning window. One reminder per request; it never repeats.
type DeadlineJob struct {
	notifications *services.NotificationService
	interval      time.Duration
	window        time.Duration
	stopChan      chan bool
}

// NewDeadlineJob creates a new deadline reminder job
func NewDeadlineJob(notifications *services.NotificationService) *DeadlineJob {
	cfg := config.AppConfig.Jobs
	return &DeadlineJob{
		notifications: notifications,
		interval:      time.Duration(cfg.DeadlineCheckMinutes) * time.Minute,
		window:        time.Duration(cfg.DeadlineWindowHours) * time.Hour,
		stopChan:      make(chan bool),
	}
}

// Start begins the deadline reminder job
func (j *DeadlineJob) Start() {
	go j.run()
	log.Println("🚀 Deadline reminder job started")
}

// Stop stops the deadline reminder job
func (j *DeadlineJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Deadline reminder job stopped")
}

func (j *DeadlineJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// One pass right away so a restart does not delay reminders by a full
	// interval.
	j.checkUpcomingDeadlines()

	for {
		select {
		case <-ticker.C:
			j.checkUpcomingDeadlines()
		case <-j.stopChan:
			return
		}
	}
}

// checkUpcomingDeadlines finds assigned active requests due inside the window
// that have not been reminded about yet
func (j *DeadlineJob) checkUpcomingDeadlines() {
	now := time.Now()

	var due []models.DesignRequest
	err := database.DB.
		Where("designer_id IS NOT NULL AND status IN ? AND deadline > ? AND deadline <= ?",
			models.AssignedActiveStatuses, now, now.Add(j.window)).
		Where("id NOT IN (?)", database.DB.Model(&models.Notification{}).
			Select("request_id").
			Where("event_type = ? AND request_id IS NOT NULL", models.EventDeadlineReminder)).
		Find(&due).Error
	if err != nil {
		log.Printf("❌ Error checking upcoming deadlines: %v", err)
		return
	}

	if len(due) == 0 {
		return
	}
	log.Printf("⏰ Found %d requests approaching their deadline", len(due))

	ctx := context.Background()
	for _, request := range due {
		j.remind(ctx, request)
	}
}

func (j *DeadlineJob) remind(ctx context.Context, request models.DesignRequest) {
	message := fmt.Sprintf("Request %q is due %s.", request.Title, request.Deadline.Format("Jan 2 15:04"))
	recipients := []uint{*request.DesignerID, request.RequesterID}
	if err := j.notifications.Fanout(ctx, models.EventDeadlineReminder, request.ID, message, recipients); err != nil {
		log.Printf("❌ Deadline reminder for request %d failed: %v", request.ID, err)
		return
	}
	log.Printf("✅ Deadline reminder sent for request %d", request.ID)
}
