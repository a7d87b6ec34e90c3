package models

import (
	"time"

	"gorm.io/gorm"
)

// RequestStatus represents where a design request sits in its lifecycle
type RequestStatus string

const (
	StatusSubmitted  RequestStatus = "Submitted"
	StatusApproved   RequestStatus = "Approved"
	StatusInProgress RequestStatus = "In Progress"
	StatusForReview  RequestStatus = "For Review"
	StatusRevision   RequestStatus = "Revision"
	StatusCompleted  RequestStatus = "Completed"
	StatusRejected   RequestStatus = "Rejected"
	StatusCanceled   RequestStatus = "Canceled"
)

// IsTerminal reports whether no further transition may leave the status.
// Rejected is a dead end as well: the requester cannot edit or resubmit it.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCanceled, StatusRejected:
		return true
	default:
		return false
	}
}

// RequestCategory is the closed set of design categories
type RequestCategory string

const (
	CategoryGraphic RequestCategory = "Graphic"
	CategoryMotion  RequestCategory = "Motion"
	CategoryGameUI  RequestCategory = "Game UI"
	CategoryOther   RequestCategory = "Other"
)

// IsValid checks the category against the closed set
func (c RequestCategory) IsValid() bool {
	switch c {
	case CategoryGraphic, CategoryMotion, CategoryGameUI, CategoryOther:
		return true
	default:
		return false
	}
}

// DesignRequest is the central entity: a design brief moving through the
// approval, production and review cycle.
type DesignRequest struct {
	ID              uint            `json:"request_id" gorm:"primaryKey"`
	RequesterID     uint            `json:"requester_id" gorm:"not null;index"`
	Requester       User            `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	DesignerID      *uint           `json:"designer_id" gorm:"index"`
	Designer        *User           `json:"designer,omitempty" gorm:"foreignKey:DesignerID"`
	Title           string          `json:"title" gorm:"type:varchar(200);not null"`
	Description     string          `json:"description" gorm:"type:text"`
	Category        RequestCategory `json:"category" gorm:"type:varchar(20);not null"`
	Deadline        time.Time       `json:"deadline" gorm:"not null"`
	Status          RequestStatus   `json:"status" gorm:"type:varchar(20);not null;default:'Submitted';index"`
	ReferenceURL    *string         `json:"reference_url" gorm:"size:512"`
	LatestDesignURL *string         `json:"latest_design_url" gorm:"size:512"`
	DesignerNotes   *string         `json:"designer_notes" gorm:"type:text"`
	VersionNo       int             `json:"version_no" gorm:"default:0"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for the DesignRequest model
func (DesignRequest) TableName() string {
	return "requests"
}

// DesignRequestCreate is the payload for submitting a new brief
type DesignRequestCreate struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	Category     string  `json:"category" binding:"required"`
	Deadline     string  `json:"deadline" binding:"required"` // ISO8601
	ReferenceURL *string `json:"reference_url"`
}

// DesignRequestEdit carries the brief fields a requester may change while the
// request is still Submitted. Nil fields are left untouched.
type DesignRequestEdit struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Deadline    *string `json:"deadline"` // ISO8601
}

// allowedTransitions is the status graph. Every status change checks its
// edge here; anything not listed is a precondition failure.
var allowedTransitions = map[RequestStatus][]RequestStatus{
	StatusSubmitted: {StatusApproved, StatusRejected, StatusCanceled},
	StatusApproved:  {StatusForReview},
	StatusForReview: {StatusRevision, StatusCompleted},
	StatusRevision:  {StatusForReview},
}

// CanTransition reports whether the status graph has an edge from -> to.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveStatuses are the non-terminal statuses shown on the dashboard
var ActiveStatuses = []RequestStatus{
	StatusSubmitted, StatusApproved, StatusInProgress, StatusForReview, StatusRevision,
}

// AssignedActiveStatuses are statuses in which a request has a designer on the
// hook and may be reassigned.
var AssignedActiveStatuses = []RequestStatus{
	StatusApproved, StatusInProgress, StatusForReview, StatusRevision,
}

// WorkloadStatuses count toward a designer's workload: designs actively owed,
// excluding work already submitted for review or finished.
var WorkloadStatuses = []RequestStatus{
	StatusApproved, StatusRevision,
}
