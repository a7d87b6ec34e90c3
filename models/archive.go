package models

import (
	"time"
)

// ArchiveEntry links a completed request to its final design artifact.
// Written exactly once, at the Completed transition, best-effort: an insert
// failure is logged and never rolls back the status change.
type ArchiveEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	RequestID  uint      `json:"request_id" gorm:"not null;uniqueIndex"`
	ArchiveURL string    `json:"archive_url" gorm:"size:512;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the ArchiveEntry model
func (ArchiveEntry) TableName() string {
	return "archive"
}
