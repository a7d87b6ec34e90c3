package services

import (
	"context"
	"sync"
	"time"

	"design-request-server/models"
)

// fakeStore is an in-memory Store used by the service tests. Fetch order for
// users is insertion order, matching the stable ordering the real store
// guarantees.
type fakeStore struct {
	mu sync.Mutex

	requests      map[uint]*models.DesignRequest
	users         map[uint]*models.User
	userOrder     []uint
	feedback      []models.Feedback
	archives      []models.ArchiveEntry
	qcReports     []models.QCReport
	notifications []models.Notification

	nextRequestID      uint
	nextNotificationID uint

	failFeedback      error
	failArchive       error
	failNotifications error
	failStatusUpdate  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: map[uint]*models.DesignRequest{},
		users:    map[uint]*models.User{},
	}
}

func (f *fakeStore) addUser(id uint, role models.UserRole, active bool) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &models.User{ID: id, FullName: "User", Role: role, IsActive: active}
	f.users[id] = user
	f.userOrder = append(f.userOrder, id)
	return user
}

func (f *fakeStore) addRequest(req models.DesignRequest) *models.DesignRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.ID == 0 {
		f.nextRequestID++
		req.ID = f.nextRequestID
	} else if req.ID > f.nextRequestID {
		f.nextRequestID = req.ID
	}
	stored := req
	f.requests[stored.ID] = &stored
	return &stored
}

func (f *fakeStore) GetRequest(ctx context.Context, id uint) (*models.DesignRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (f *fakeStore) CreateRequest(ctx context.Context, req *models.DesignRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextRequestID++
	req.ID = f.nextRequestID
	req.CreatedAt = time.Now()
	stored := *req
	f.requests[req.ID] = &stored
	return nil
}

func (f *fakeStore) UpdateRequestStatus(ctx context.Context, id uint, fields map[string]interface{}, expected models.RequestStatus) (*models.DesignRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStatusUpdate != nil {
		return nil, f.failStatusUpdate
	}
	req, ok := f.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.Status != expected {
		return nil, &PreconditionError{
			Op:       "update status",
			Expected: []models.RequestStatus{expected},
			Actual:   req.Status,
		}
	}
	for key, value := range fields {
		switch key {
		case "status":
			req.Status = value.(models.RequestStatus)
		case "designer_id":
			designerID := value.(uint)
			req.DesignerID = &designerID
		case "latest_design_url":
			url := value.(string)
			req.LatestDesignURL = &url
		case "designer_notes":
			notes := value.(string)
			req.DesignerNotes = &notes
		case "version_no":
			req.VersionNo = value.(int)
		case "title":
			req.Title = value.(string)
		case "description":
			req.Description = value.(string)
		case "category":
			req.Category = value.(models.RequestCategory)
		case "deadline":
			req.Deadline = value.(time.Time)
		}
	}
	req.UpdatedAt = time.Now()
	copied := *req
	return &copied, nil
}

func (f *fakeStore) InsertFeedback(ctx context.Context, fb *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFeedback != nil {
		return f.failFeedback
	}
	fb.ID = uint(len(f.feedback) + 1)
	f.feedback = append(f.feedback, *fb)
	return nil
}

func (f *fakeStore) InsertArchiveEntry(ctx context.Context, requestID uint, artifactURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failArchive != nil {
		return f.failArchive
	}
	f.archives = append(f.archives, models.ArchiveEntry{RequestID: requestID, ArchiveURL: artifactURL})
	return nil
}

func (f *fakeStore) InsertQCReport(ctx context.Context, report *models.QCReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.qcReports = append(f.qcReports, *report)
	return nil
}

func (f *fakeStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) ListActiveDesigners(ctx context.Context) ([]models.User, error) {
	return f.listByRole(func(u *models.User) bool {
		return u.Role == models.RoleDesigner && u.IsActive
	}), nil
}

func (f *fakeStore) ListActiveApprovers(ctx context.Context) ([]models.User, error) {
	return f.listByRole(func(u *models.User) bool {
		return u.Role.IsApprover() && u.IsActive
	}), nil
}

func (f *fakeStore) listByRole(match func(*models.User) bool) []models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, id := range f.userOrder {
		if user := f.users[id]; match(user) {
			out = append(out, *user)
		}
	}
	return out
}

func (f *fakeStore) CountActiveAssignments(ctx context.Context, designerID uint, statuses []models.RequestStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, req := range f.requests {
		if req.DesignerID == nil || *req.DesignerID != designerID {
			continue
		}
		for _, status := range statuses {
			if req.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *fakeStore) InsertNotifications(ctx context.Context, rows []models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNotifications != nil {
		return f.failNotifications
	}
	for _, row := range rows {
		f.nextNotificationID++
		row.ID = f.nextNotificationID
		f.notifications = append(f.notifications, row)
	}
	return nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for i := len(f.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if f.notifications[i].RecipientID == recipientID {
			out = append(out, f.notifications[i])
		}
	}
	return out, nil
}

func (f *fakeStore) GetNotifications(ctx context.Context, ids []uint, recipientID uint) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idSet := map[uint]bool{}
	for _, id := range ids {
		idSet[id] = true
	}
	var out []models.Notification
	for _, n := range f.notifications {
		if idSet[n.ID] && n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) CountUnreadNotifications(ctx context.Context, recipientID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) MarkNotificationsRead(ctx context.Context, ids []uint, readerID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idSet := map[uint]bool{}
	for _, id := range ids {
		idSet[id] = true
	}
	now := time.Now()
	for i := range f.notifications {
		n := &f.notifications[i]
		if idSet[n.ID] && n.RecipientID == readerID && n.ReadAt == nil {
			readAt := now
			n.ReadAt = &readAt
		}
	}
	return nil
}

func (f *fakeStore) MarkGroupRead(ctx context.Context, requestID uint, eventType models.EventType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.RequestID != nil && *n.RequestID == requestID && n.EventType == eventType && n.ReadAt == nil {
			readAt := now
			n.ReadAt = &readAt
		}
	}
	return nil
}

// notificationsFor returns the stored rows for a recipient, oldest first.
func (f *fakeStore) notificationsFor(recipientID uint) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}
