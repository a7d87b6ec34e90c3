package models

import (
	"time"
)

// AuditLogEntry is one append-only record per administrative user mutation.
type AuditLogEntry struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ChangerID    uint      `json:"changer_id" gorm:"not null;index"`
	Changer      User      `json:"changer,omitempty" gorm:"foreignKey:ChangerID"`
	TargetUserID uint      `json:"target_user_id" gorm:"not null;index"`
	TargetUser   User      `json:"target_user,omitempty" gorm:"foreignKey:TargetUserID"`
	Action       string    `json:"action" gorm:"type:varchar(50);not null"` // ROLE_CHANGE, STATUS_CHANGE
	OldValue     string    `json:"old_value" gorm:"type:varchar(50)"`
	NewValue     string    `json:"new_value" gorm:"type:varchar(50)"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for the AuditLogEntry model
func (AuditLogEntry) TableName() string {
	return "audit_logs"
}
