package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poms/internal/infra/persistence/bucket"
	"poms/pkg/domain"
)

func openMock(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	restore := OverrideSQLOpen(func(driver, _ string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		return db, nil
	})
	t.Cleanup(restore)
	return mock
}

func expectPersist(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	for _, name := range bucket.Names {
		mock.ExpectExec(`INSERT INTO state`).
			WithArgs(name, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
}

func TestNewStoreLoadsExistingBuckets(t *testing.T) {
	mock := openMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS state`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT bucket, payload FROM state`).WillReturnRows(
		sqlmock.NewRows([]string{"bucket", "payload"}).
			AddRow("doctors", []byte(`[{"doctor_id":4,"name":"Dr. Sneha","degree":"MBBS","specialization":"Surgery","contact":""}]`)).
			AddRow("meta", []byte(`{"lastSaved":"2025-06-01T10:00:00.000000"}`)),
	)

	store, err := NewStore(context.Background(), "", domain.NewRulesEngine(), nil)
	require.NoError(t, err)
	assert.True(t, store.Loaded())
	doctors := store.ListDoctors()
	require.Len(t, doctors, 1)
	assert.Equal(t, 4, doctors[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransactionPersistsEveryBucket(t *testing.T) {
	mock := openMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS state`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT bucket, payload FROM state`).WillReturnRows(sqlmock.NewRows([]string{"bucket", "payload"}))
	expectPersist(mock)

	store, err := NewStore(context.Background(), "postgres://ignored", nil, nil)
	require.NoError(t, err)
	assert.False(t, store.Loaded())

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateDoctor(domain.Doctor{Name: "Dr. Kiran", Specialization: "Pathology"})
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistFailureSurfacesAsPersistenceError(t *testing.T) {
	mock := openMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS state`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT bucket, payload FROM state`).WillReturnRows(sqlmock.NewRows([]string{"bucket", "payload"}))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO state`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	store, err := NewStore(context.Background(), "", nil, nil)
	require.NoError(t, err)

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateDoctor(domain.Doctor{Name: "Dr. Kiran", Specialization: "Pathology"})
		return err
	})
	require.Error(t, err)
	assert.True(t, domain.IsPersistence(err))
	assert.Len(t, store.ListDoctors(), 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCorruptBucketIsReportedNotFatal(t *testing.T) {
	mock := openMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS state`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT bucket, payload FROM state`).WillReturnRows(
		sqlmock.NewRows([]string{"bucket", "payload"}).AddRow("rooms", []byte(`{"room_id":`)),
	)

	store, err := NewStore(context.Background(), "", nil, nil)
	require.NoError(t, err)
	assert.False(t, store.Loaded())
	assert.Error(t, store.LoadError())
}

func TestNewStoreFailsWhenTableCannotBeCreated(t *testing.T) {
	mock := openMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS state`).WillReturnError(errors.New("permission denied"))
	mock.ExpectClose()

	_, err := NewStore(context.Background(), "", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure state table")
}
