package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestAppendScan(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWalletRepository(db)

	scannedAt := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance_wallets").
		WithArgs(sqlmock.AnyArg(), "emp-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM attendance_wallets WHERE employee_id = $1 FOR UPDATE")).
		WithArgs("emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("wallet-1"))
	mock.ExpectQuery("SELECT DISTINCT ON").
		WithArgs("wallet-1").
		WillReturnRows(sqlmock.NewRows([]string{"department_id", "scan_type", "scanned_at"}).
			AddRow("dept-1", string(models.ScanOut), scannedAt.Add(-16*time.Hour)))
	mock.ExpectExec("INSERT INTO scan_entries").
		WithArgs(sqlmock.AnyArg(), "wallet-1", scannedAt, string(models.ScanIn), "dept-1", "op-1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen []models.DepartmentLane
	inserted, err := repo.AppendScan(context.Background(), "emp-1", func(lanes []models.DepartmentLane) ([]models.ScanEntry, error) {
		seen = lanes
		return []models.ScanEntry{{
			ScannedAt:    scannedAt,
			ScanType:     models.ScanIn,
			DepartmentID: "dept-1",
			ScannedBy:    "op-1",
		}}, nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "dept-1", seen[0].DepartmentID)
	require.Len(t, inserted, 1)
	assert.Equal(t, "wallet-1", inserted[0].WalletID)
	assert.NotEmpty(t, inserted[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendScanDecideErrorRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWalletRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance_wallets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM attendance_wallets WHERE employee_id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("wallet-1"))
	mock.ExpectQuery("SELECT DISTINCT ON").
		WillReturnRows(sqlmock.NewRows([]string{"department_id", "scan_type", "scanned_at"}))
	mock.ExpectRollback()

	_, err := repo.AppendScan(context.Background(), "emp-1", func(lanes []models.DepartmentLane) ([]models.ScanEntry, error) {
		return nil, assert.AnError
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEntries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWalletRepository(db)

	from := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	scannedAt := from.Add(2*24*time.Hour + 9*time.Hour)

	rows := sqlmock.NewRows([]string{"id", "wallet_id", "scanned_at", "scan_type", "department_id", "scanned_by", "auto_closed", "created_at"}).
		AddRow("entry-1", "wallet-1", scannedAt, string(models.ScanIn), "dept-1", "op-1", false, scannedAt)
	mock.ExpectQuery("FROM scan_entries e JOIN attendance_wallets w").
		WithArgs("emp-1", from, to).
		WillReturnRows(rows)

	entries, err := repo.ListEntries(context.Background(), "emp-1", from, to)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ScanIn, entries[0].ScanType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
