package services

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"design-request-server/models"
)

// GormStore is the production Store backed by Postgres via GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store around an open GORM handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetRequest(ctx context.Context, id uint) (*models.DesignRequest, error) {
	var req models.DesignRequest
	err := s.db.WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *GormStore) CreateRequest(ctx context.Context, req *models.DesignRequest) error {
	return s.db.WithContext(ctx).Create(req).Error
}

// UpdateRequestStatus is the serialization point for transitions: the prior
// status goes into the WHERE clause, so of two racing transitions exactly one
// updates a row and the other observes RowsAffected == 0.
func (s *GormStore) UpdateRequestStatus(ctx context.Context, id uint, fields map[string]interface{}, expected models.RequestStatus) (*models.DesignRequest, error) {
	res := s.db.WithContext(ctx).Model(&models.DesignRequest{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		current, err := s.GetRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &PreconditionError{
			Op:       "update status",
			Expected: []models.RequestStatus{expected},
			Actual:   current.Status,
		}
	}
	return s.GetRequest(ctx, id)
}

func (s *GormStore) InsertFeedback(ctx context.Context, fb *models.Feedback) error {
	return s.db.WithContext(ctx).Create(fb).Error
}

func (s *GormStore) InsertArchiveEntry(ctx context.Context, requestID uint, artifactURL string) error {
	entry := models.ArchiveEntry{
		RequestID:  requestID,
		ArchiveURL: artifactURL,
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

func (s *GormStore) InsertQCReport(ctx context.Context, report *models.QCReport) error {
	return s.db.WithContext(ctx).Create(report).Error
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) ListActiveDesigners(ctx context.Context) ([]models.User, error) {
	var designers []models.User
	err := s.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", models.RoleDesigner, true).
		Order("id ASC").
		Find(&designers).Error
	return designers, err
}

func (s *GormStore) ListActiveApprovers(ctx context.Context) ([]models.User, error) {
	var approvers []models.User
	err := s.db.WithContext(ctx).
		Where("role IN ? AND is_active = ?", []models.UserRole{models.RoleProducer, models.RoleManagement, models.RoleAdmin}, true).
		Order("id ASC").
		Find(&approvers).Error
	return approvers, err
}

func (s *GormStore) CountActiveAssignments(ctx context.Context, designerID uint, statuses []models.RequestStatus) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.DesignRequest{}).
		Where("designer_id = ? AND status IN ?", designerID, statuses).
		Count(&count).Error
	return count, err
}

func (s *GormStore) InsertNotifications(ctx context.Context, rows []models.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

func (s *GormStore) ListNotifications(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (s *GormStore) GetNotifications(ctx context.Context, ids []uint, recipientID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("id = ANY(?) AND recipient_id = ?", pq.Array(ids), recipientID).
		Find(&notifications).Error
	return notifications, err
}

func (s *GormStore) CountUnreadNotifications(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	return count, err
}

func (s *GormStore) MarkNotificationsRead(ctx context.Context, ids []uint, readerID uint) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ANY(?) AND recipient_id = ? AND read_at IS NULL", pq.Array(ids), readerID).
		Update("read_at", now).Error
}

func (s *GormStore) MarkGroupRead(ctx context.Context, requestID uint, eventType models.EventType) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("request_id = ? AND event_type = ? AND read_at IS NULL", requestID, eventType).
		Update("read_at", now).Error
}
