package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse-telemetry/internal/models"
)

func setupSubscriptionsMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *SQLiteSubscriptionsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return db, mock, NewSQLiteSubscriptionsRepository(db)
}

func TestSubscriptionsCreate_Defaults(t *testing.T) {
	db, mock, repo := setupSubscriptionsMockDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO subscriptions`).
		WithArgs(sqlmock.AnyArg(), "Alice", "0900000001", "pkg-1", sqlmock.AnyArg(), "pending").
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := repo.Create(context.Background(), &models.Subscription{
		CustomerName: "Alice",
		PhoneNumber:  "0900000001",
		PackageID:    "pkg-1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	// 未指定时默认 pending，开始时间取当前时间
	assert.Equal(t, models.SubscriptionPending, created.Status)
	assert.Greater(t, created.StartDate, float64(0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionsGetByID(t *testing.T) {
	db, mock, repo := setupSubscriptionsMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "customer_name", "phone_number", "package_id", "start_date", "status"}).
		AddRow("sub-1", "Alice", "0900000001", "pkg-1", 1700000000.0, "active")

	mock.ExpectQuery(`SELECT (.+) FROM subscriptions WHERE`).
		WithArgs("sub-1").
		WillReturnRows(rows)

	sub, err := repo.GetByID(context.Background(), "sub-1")

	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.Equal(t, "Alice", sub.CustomerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionsUpdate_NotFound(t *testing.T) {
	db, mock, repo := setupSubscriptionsMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE subscriptions`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Subscription{ID: "missing-id"})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionsDelete_NotFound(t *testing.T) {
	db, mock, repo := setupSubscriptionsMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM subscriptions WHERE`).
		WithArgs("missing-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing-id")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
