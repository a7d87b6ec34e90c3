package models

import (
	"time"
)

// QCReport records the automated check run against an uploaded design
// version. Best-effort: a failed insert never blocks the upload transition.
type QCReport struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	RequestID  uint      `json:"request_id" gorm:"not null;index"`
	VersionNo  int       `json:"version_no" gorm:"not null"`
	IssueCount int       `json:"issue_count" gorm:"not null;default:0"`
	Summary    string    `json:"summary" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the QCReport model
func (QCReport) TableName() string {
	return "qc_reports"
}
