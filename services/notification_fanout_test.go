package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"design-request-server/models"
)

func TestFanoutWritesOneRowPerRecipient(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)

	err := svc.Fanout(context.Background(), models.EventRequestCreated, 7, "new request", []uint{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, store.notifications, 3)
	for _, n := range store.notifications {
		assert.Equal(t, uint(7), *n.RequestID)
		assert.Nil(t, n.ReadAt)
		assert.False(t, n.SentAt.IsZero())
	}
}

func TestFanoutZeroRecipientsIsSilentlyDropped(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)

	err := svc.Fanout(context.Background(), models.EventCompleted, 7, "done", nil)
	require.NoError(t, err)
	assert.Empty(t, store.notifications)
}

func TestFanoutDoesNotDeduplicateRecipients(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)

	// callers own de-duplication; the fan-out writes what it is given
	err := svc.Fanout(context.Background(), models.EventCompleted, 7, "done", []uint{1, 1})
	require.NoError(t, err)
	assert.Len(t, store.notificationsFor(1), 2)
}

type capturingPublisher struct {
	published []models.Notification
}

func (p *capturingPublisher) Publish(recipientID uint, n models.Notification) {
	p.published = append(p.published, n)
}

func TestFanoutPushesToPublisher(t *testing.T) {
	store := newFakeStore()
	pub := &capturingPublisher{}
	svc := NewNotificationService(store, pub)

	err := svc.Fanout(context.Background(), models.EventRequestApproved, 7, "approved", []uint{1, 2})
	require.NoError(t, err)
	assert.Len(t, pub.published, 2)
}

func TestGroupReadMarksAllApproverCopies(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	// same broadcast fact delivered to approvers A=1, B=2, C=3
	require.NoError(t, svc.Fanout(ctx, models.EventRequestCreated, 7, "new request", []uint{1, 2, 3}))
	// unrelated request's broadcast stays untouched
	require.NoError(t, svc.Fanout(ctx, models.EventRequestCreated, 8, "other request", []uint{1, 2}))

	aRows := store.notificationsFor(1)
	var aID uint
	for _, n := range aRows {
		if *n.RequestID == 7 {
			aID = n.ID
		}
	}
	require.NoError(t, svc.MarkRead(ctx, 1, []uint{aID}))

	for _, recipient := range []uint{1, 2, 3} {
		for _, n := range store.notificationsFor(recipient) {
			if *n.RequestID == 7 {
				assert.NotNil(t, n.ReadAt, "recipient %d copy of request 7 broadcast should be read", recipient)
			} else {
				assert.Nil(t, n.ReadAt, "request 8 broadcast must stay unread")
			}
		}
	}
}

func TestPersonalEventReadDoesNotTouchOtherUsers(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Fanout(ctx, models.EventRevisionDesign, 7, "revise", []uint{10}))
	require.NoError(t, svc.Fanout(ctx, models.EventRevisionDesign, 7, "revise copy", []uint{11}))

	designerRows := store.notificationsFor(10)
	require.Len(t, designerRows, 1)
	require.NoError(t, svc.MarkRead(ctx, 10, []uint{designerRows[0].ID}))

	assert.NotNil(t, store.notificationsFor(10)[0].ReadAt)
	assert.Nil(t, store.notificationsFor(11)[0].ReadAt)
}

func TestMarkReadIgnoresOtherUsersRows(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Fanout(ctx, models.EventCompleted, 7, "done", []uint{10}))
	id := store.notificationsFor(10)[0].ID

	// a different reader cannot mark someone else's personal row
	require.NoError(t, svc.MarkRead(ctx, 11, []uint{id}))
	assert.Nil(t, store.notificationsFor(10)[0].ReadAt)
}

func TestUnreadCount(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Fanout(ctx, models.EventCompleted, 7, "done", []uint{10}))
	require.NoError(t, svc.Fanout(ctx, models.EventRevisionDesign, 8, "revise", []uint{10}))

	count, err := svc.UnreadCount(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	rows := store.notificationsFor(10)
	require.NoError(t, svc.MarkRead(ctx, 10, []uint{rows[0].ID, rows[1].ID}))

	count, err = svc.UnreadCount(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
