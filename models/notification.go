package models

import (
	"time"
)

// EventType classifies what happened to a request for notification purposes
type EventType string

const (
	EventRequestCreated        EventType = "REQUEST_CREATED"
	EventRequestApproved       EventType = "REQUEST_APPROVED"
	EventRevisionBrief         EventType = "REVISION_BRIEF"
	EventRequestCanceled       EventType = "REQUEST_CANCELED"
	EventRevisionDesign        EventType = "REVISION_DESIGN"
	EventCompleted             EventType = "COMPLETED"
	EventReassignmentOut       EventType = "REASSIGNMENT_OUT"
	EventReassignmentIn        EventType = "REASSIGNMENT_IN"
	EventRequestAssignedUpdate EventType = "REQUEST_ASSIGNED_UPDATE"
	EventDeadlineReminder      EventType = "DEADLINE_REMINDER"
)

// IsBroadcast reports whether the event represents one organizational fact
// shared by the whole approver group. Reading one recipient's copy reads
// everyone's; all other events carry strictly personal read state.
func (e EventType) IsBroadcast() bool {
	return e == EventRequestCreated || e == EventRequestApproved
}

// Notification is one row per (event, recipient). Unread iff ReadAt is null.
type Notification struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	RecipientID uint       `json:"recipient_id" gorm:"not null;index"`
	RequestID   *uint      `json:"request_id" gorm:"index"`
	EventType   EventType  `json:"event_type" gorm:"type:varchar(30);not null"`
	Message     string     `json:"message" gorm:"type:text;not null"`
	SentAt      time.Time  `json:"sent_at" gorm:"not null"`
	ReadAt      *time.Time `json:"read_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
