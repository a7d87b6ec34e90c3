package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"design-request-server/models"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, PreferSimpleProtocol: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewGormStore(db), mock
}

func TestUpdateRequestStatusWinsCAS(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "status", "version_no"}).
			AddRow(1, 9, "Approved", 0))

	req, err := store.UpdateRequestStatus(context.Background(), 1, map[string]interface{}{
		"status":      models.StatusApproved,
		"designer_id": uint(10),
	}, models.StatusSubmitted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRequestStatusLosesCAS(t *testing.T) {
	store, mock := newMockStore(t)

	// the WHERE status = expected guard matched no rows: someone else won
	mock.ExpectExec(`UPDATE "requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "status", "version_no"}).
			AddRow(1, 9, "Approved", 0))

	_, err := store.UpdateRequestStatus(context.Background(), 1, map[string]interface{}{
		"status": models.StatusApproved,
	}, models.StatusSubmitted)
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveAssignments(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := store.CountActiveAssignments(context.Background(), 10, models.WorkloadStatuses)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkGroupReadUpdatesUnreadCopies(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "notifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := store.MarkGroupRead(context.Background(), 7, models.EventRequestCreated)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
