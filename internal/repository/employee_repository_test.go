package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

var employeeRowColumns = []string{
	"id", "code", "full_name", "department_id", "shift_type_id", "cycle_timing_id",
	"hourly_rate", "joined_at", "pf_active", "pf_amount_per_day", "esic_active", "active", "created_at", "updated_at",
}

func employeeRow(id, code string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(employeeRowColumns).
		AddRow(id, code, "Test Employee", "dept-1", nil, "timing-1",
			100.0, now.AddDate(-1, 0, 0), true, 50.0, false, true, now, now)
}

func TestEmployeeFindByCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery("FROM employees WHERE code").
		WithArgs("E001").
		WillReturnRows(employeeRow("emp-1", "E001"))

	employee, err := repo.FindByCode(context.Background(), "E001")
	require.NoError(t, err)
	assert.Equal(t, "emp-1", employee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeFindByCodeMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery("FROM employees WHERE code").
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE 1=1 AND department_id = $1 AND (LOWER(full_name) LIKE $2 OR LOWER(code) LIKE $2) ORDER BY code ASC LIMIT 20 OFFSET 0")).
		WithArgs("dept-1", "%smith%").
		WillReturnRows(employeeRow("emp-1", "E001"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM employees WHERE 1=1 AND department_id = $1")).
		WithArgs("dept-1", "%smith%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	employees, total, err := repo.List(context.Background(), models.EmployeeFilter{
		DepartmentID: "dept-1",
		Search:       "Smith",
		SortBy:       "code",
		SortOrder:    "asc",
	})
	require.NoError(t, err)
	assert.Len(t, employees, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeListRejectsUnknownSortColumn(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(employeeRow("emp-1", "E001"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM employees WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.EmployeeFilter{SortBy: "hourly_rate; DROP TABLE employees"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEligible(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	joinedBefore := time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC)
	active := true
	mock.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE 1=1 AND cycle_timing_id = $1 AND joined_at <= $2 AND active = $3 ORDER BY code ASC")).
		WithArgs("timing-1", joinedBefore, true).
		WillReturnRows(employeeRow("emp-1", "E001"))

	employees, err := repo.ListEligible(context.Background(), models.EmployeeFilter{
		CycleTimingID: "timing-1",
		JoinedBefore:  &joinedBefore,
		Active:        &active,
	})
	require.NoError(t, err)
	assert.Len(t, employees, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec("INSERT INTO employees").WillReturnResult(sqlmock.NewResult(0, 1))

	employee := &models.Employee{
		Code:          "E002",
		FullName:      "New Hire",
		DepartmentID:  "dept-1",
		CycleTimingID: "timing-1",
		HourlyRate:    90,
		JoinedAt:      time.Now().UTC(),
		Active:        true,
	}
	err := repo.Create(context.Background(), employee)
	require.NoError(t, err)
	assert.NotEmpty(t, employee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByCodeNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM employees WHERE code = $1 LIMIT 1")).
		WithArgs("E999").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByCode(context.Background(), "E999", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
