package services

import (
	"context"
	"log"
	"time"

	"design-request-server/models"
)

// Publisher pushes a freshly inserted notification to a connected recipient.
// Delivery is fire-and-forget; persistence is the source of truth.
type Publisher interface {
	Publish(recipientID uint, notification models.Notification)
}

// NotificationService writes and reads notification rows. It is invoked as a
// side-effect step by the lifecycle and assignment services: a fan-out failure
// is logged by the caller and never aborts a committed transition.
type NotificationService struct {
	store     Store
	publisher Publisher
}

// NewNotificationService creates a notification service. publisher may be nil.
func NewNotificationService(store Store, publisher Publisher) *NotificationService {
	return &NotificationService{store: store, publisher: publisher}
}

// Fanout writes one row per recipient for the given event. Zero recipients is
// not an error: the event is silently dropped. Duplicate recipient ids are not
// de-duplicated here; callers pass distinct sets.
func (s *NotificationService) Fanout(ctx context.Context, eventType models.EventType, requestID uint, message string, recipientIDs []uint) error {
	if len(recipientIDs) == 0 {
		return nil
	}

	now := time.Now()
	rid := requestID
	rows := make([]models.Notification, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		rows = append(rows, models.Notification{
			RecipientID: recipientID,
			RequestID:   &rid,
			EventType:   eventType,
			Message:     message,
			SentAt:      now,
		})
	}

	if err := s.store.InsertNotifications(ctx, rows); err != nil {
		return err
	}

	if s.publisher != nil {
		for _, row := range rows {
			s.publisher.Publish(row.RecipientID, row)
		}
	}

	return nil
}

// ListRecent returns the reader's latest notifications, newest first.
func (s *NotificationService) ListRecent(ctx context.Context, readerID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListNotifications(ctx, readerID, limit)
}

// UnreadCount returns the number of unread notifications for the reader.
func (s *NotificationService) UnreadCount(ctx context.Context, readerID uint) (int64, error) {
	return s.store.CountUnreadNotifications(ctx, readerID)
}

// MarkRead marks the reader's copies of the given notifications as read.
// Broadcast events (REQUEST_CREATED, REQUEST_APPROVED) represent one
// organizational fact, so reading one copy also reads every other approver's
// unread copy of the same (request, event) pair. All other events only touch
// the reader's own row.
func (s *NotificationService) MarkRead(ctx context.Context, readerID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	// Fetch before marking so the broadcast set is known even after the
	// reader's own rows flip to read.
	owned, err := s.store.GetNotifications(ctx, ids, readerID)
	if err != nil {
		return err
	}

	if err := s.store.MarkNotificationsRead(ctx, ids, readerID); err != nil {
		return err
	}

	for _, n := range owned {
		if !n.EventType.IsBroadcast() || n.RequestID == nil {
			continue
		}
		if err := s.store.MarkGroupRead(ctx, *n.RequestID, n.EventType); err != nil {
			log.Printf("⚠️ Group read for request %d event %s failed: %v", *n.RequestID, n.EventType, err)
		}
	}

	return nil
}
