package models

import (
	"time"
)

// Feedback is one append-only record per review action that carried text.
// Rows are never updated or deleted; they double as revision history and as
// the numerator for the average-revisions report.
type Feedback struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	RequestID    uint          `json:"request_id" gorm:"not null;index"`
	VersionNo    int           `json:"version_no" gorm:"not null"`
	CommenterID  uint          `json:"commenter_id" gorm:"not null"`
	FeedbackText string        `json:"feedback_text" gorm:"type:text;not null"`
	StatusChange RequestStatus `json:"status_change" gorm:"type:varchar(20);not null"` // Revision or Completed
	CreatedAt    time.Time     `json:"created_at"`
}

// TableName sets custom table name
func (Feedback) TableName() string { return "feedback" }
