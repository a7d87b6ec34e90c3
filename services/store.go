package services

import (
	"context"

	"design-request-server/models"
)

// Store is the persistence contract the lifecycle, assignment and
// notification services run against. The production implementation is
// GormStore; tests substitute an in-memory fake.
type Store interface {
	GetRequest(ctx context.Context, id uint) (*models.DesignRequest, error)
	CreateRequest(ctx context.Context, req *models.DesignRequest) error

	// UpdateRequestStatus applies fields to the request row only if its
	// current status still equals expected (compare-and-swap). When two
	// actors race on the same transition, exactly one wins; the loser gets
	// a PreconditionError. Returns the updated row.
	UpdateRequestStatus(ctx context.Context, id uint, fields map[string]interface{}, expected models.RequestStatus) (*models.DesignRequest, error)

	InsertFeedback(ctx context.Context, fb *models.Feedback) error
	InsertArchiveEntry(ctx context.Context, requestID uint, artifactURL string) error
	InsertQCReport(ctx context.Context, report *models.QCReport) error

	GetUser(ctx context.Context, id uint) (*models.User, error)
	ListActiveDesigners(ctx context.Context) ([]models.User, error)
	ListActiveApprovers(ctx context.Context) ([]models.User, error)
	CountActiveAssignments(ctx context.Context, designerID uint, statuses []models.RequestStatus) (int64, error)

	InsertNotifications(ctx context.Context, rows []models.Notification) error
	ListNotifications(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	GetNotifications(ctx context.Context, ids []uint, recipientID uint) ([]models.Notification, error)
	CountUnreadNotifications(ctx context.Context, recipientID uint) (int64, error)
	MarkNotificationsRead(ctx context.Context, ids []uint, readerID uint) error

	// MarkGroupRead marks every unread copy of a broadcast event for the
	// same (request, event type) pair as read, across all recipients.
	MarkGroupRead(ctx context.Context, requestID uint, eventType models.EventType) error
}
