package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
)

func TestDecideScanFirstScanIsIn(t *testing.T) {
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	decision := DecideScan(nil, "dept-1", now, time.Second)

	assert.Equal(t, ScanActionAppendOnly, decision.Action)
	assert.Equal(t, models.ScanIn, decision.Direction)
	assert.Nil(t, decision.AutoClose)
	assert.Equal(t, now, decision.Entry.ScannedAt)
	assert.Equal(t, "dept-1", decision.Entry.DepartmentID)
}

func TestDecideScanTogglesToOut(t *testing.T) {
	now := time.Date(2025, time.March, 3, 17, 0, 0, 0, time.UTC)
	lanes := []models.DepartmentLane{
		{DepartmentID: "dept-1", ScanType: models.ScanIn, ScannedAt: now.Add(-8 * time.Hour)},
	}
	decision := DecideScan(lanes, "dept-1", now, time.Second)

	assert.Equal(t, models.ScanOut, decision.Direction)
	assert.Nil(t, decision.AutoClose)
}

func TestDecideScanTogglesBackToIn(t *testing.T) {
	now := time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)
	lanes := []models.DepartmentLane{
		{DepartmentID: "dept-1", ScanType: models.ScanOut, ScannedAt: now.Add(-16 * time.Hour)},
	}
	decision := DecideScan(lanes, "dept-1", now, time.Second)

	assert.Equal(t, models.ScanIn, decision.Direction)
	assert.Nil(t, decision.AutoClose)
}

func TestDecideScanAutoClosesOtherDepartment(t *testing.T) {
	now := time.Date(2025, time.March, 3, 14, 0, 0, 0, time.UTC)
	lanes := []models.DepartmentLane{
		{DepartmentID: "dept-2", ScanType: models.ScanIn, ScannedAt: now.Add(-5 * time.Hour)},
	}
	decision := DecideScan(lanes, "dept-1", now, time.Second)

	assert.Equal(t, ScanActionAutoCloseThenAppend, decision.Action)
	assert.Equal(t, models.ScanIn, decision.Direction)
	require.NotNil(t, decision.AutoClose)
	assert.Equal(t, "dept-2", decision.AutoClose.DepartmentID)
	assert.Equal(t, models.ScanOut, decision.AutoClose.ScanType)
	assert.True(t, decision.AutoClose.AutoClosed)
	assert.Equal(t, now.Add(-time.Second), decision.AutoClose.ScannedAt)
	assert.True(t, decision.AutoClose.ScannedAt.Before(decision.Entry.ScannedAt))
}

func TestDecideScanAutoClosesMostRecentOpenLane(t *testing.T) {
	now := time.Date(2025, time.March, 3, 14, 0, 0, 0, time.UTC)
	lanes := []models.DepartmentLane{
		{DepartmentID: "dept-2", ScanType: models.ScanIn, ScannedAt: now.Add(-6 * time.Hour)},
		{DepartmentID: "dept-3", ScanType: models.ScanIn, ScannedAt: now.Add(-2 * time.Hour)},
		{DepartmentID: "dept-4", ScanType: models.ScanOut, ScannedAt: now.Add(-time.Hour)},
	}
	decision := DecideScan(lanes, "dept-1", now, time.Second)

	require.NotNil(t, decision.AutoClose)
	assert.Equal(t, "dept-3", decision.AutoClose.DepartmentID)
}

func TestDecideScanOutNeverAutoCloses(t *testing.T) {
	now := time.Date(2025, time.March, 3, 17, 0, 0, 0, time.UTC)
	lanes := []models.DepartmentLane{
		{DepartmentID: "dept-1", ScanType: models.ScanIn, ScannedAt: now.Add(-8 * time.Hour)},
		{DepartmentID: "dept-2", ScanType: models.ScanIn, ScannedAt: now.Add(-4 * time.Hour)},
	}
	decision := DecideScan(lanes, "dept-1", now, time.Second)

	assert.Equal(t, models.ScanOut, decision.Direction)
	assert.Nil(t, decision.AutoClose)
}

type scanEmployeeRepoFake struct {
	employee *models.Employee
	err      error
}

func (f scanEmployeeRepoFake) FindByCode(ctx context.Context, code string) (*models.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.employee, nil
}

type scanWalletRepoFake struct {
	lanes    []models.DepartmentLane
	inserted []models.ScanEntry
}

func (f *scanWalletRepoFake) AppendScan(ctx context.Context, employeeID string, decide func(lanes []models.DepartmentLane) ([]models.ScanEntry, error)) ([]models.ScanEntry, error) {
	pending, err := decide(f.lanes)
	if err != nil {
		return nil, err
	}
	f.inserted = pending
	return pending, nil
}

func operatorClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "op-1", Role: models.RoleOperator, DepartmentID: "dept-1"}
}

func TestRecordScanFirstIn(t *testing.T) {
	wallets := &scanWalletRepoFake{}
	svc := NewScanService(
		scanEmployeeRepoFake{employee: &models.Employee{ID: "emp-1", Code: "E001"}},
		wallets, nil, nil, nil, time.Second,
	)

	result, err := svc.RecordScan(context.Background(), RecordScanRequest{EmployeeCode: "E001"}, operatorClaims())
	require.NoError(t, err)
	assert.Equal(t, "emp-1", result.EmployeeID)
	assert.Equal(t, models.ScanIn, result.Direction)
	assert.Nil(t, result.AutoClosedDepartment)
	require.Len(t, wallets.inserted, 1)
	assert.Equal(t, "op-1", wallets.inserted[0].ScannedBy)
}

func TestRecordScanAutoClose(t *testing.T) {
	wallets := &scanWalletRepoFake{lanes: []models.DepartmentLane{
		{DepartmentID: "dept-2", ScanType: models.ScanIn, ScannedAt: time.Now().UTC().Add(-3 * time.Hour)},
	}}
	svc := NewScanService(
		scanEmployeeRepoFake{employee: &models.Employee{ID: "emp-1", Code: "E001"}},
		wallets, nil, nil, nil, time.Second,
	)

	result, err := svc.RecordScan(context.Background(), RecordScanRequest{EmployeeCode: "E001"}, operatorClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ScanIn, result.Direction)
	require.NotNil(t, result.AutoClosedDepartment)
	assert.Equal(t, "dept-2", *result.AutoClosedDepartment)
	require.Len(t, wallets.inserted, 2)
	assert.True(t, wallets.inserted[0].AutoClosed)
	assert.Equal(t, models.ScanOut, wallets.inserted[0].ScanType)
	assert.Equal(t, "op-1", wallets.inserted[0].ScannedBy)
	assert.False(t, wallets.inserted[1].AutoClosed)
}

func TestRecordScanUnknownEmployee(t *testing.T) {
	svc := NewScanService(
		scanEmployeeRepoFake{err: sql.ErrNoRows},
		&scanWalletRepoFake{}, nil, nil, nil, time.Second,
	)

	_, err := svc.RecordScan(context.Background(), RecordScanRequest{EmployeeCode: "NOPE"}, operatorClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRecordScanRequiresOperatorDepartment(t *testing.T) {
	svc := NewScanService(
		scanEmployeeRepoFake{employee: &models.Employee{ID: "emp-1"}},
		&scanWalletRepoFake{}, nil, nil, nil, time.Second,
	)

	_, err := svc.RecordScan(context.Background(), RecordScanRequest{EmployeeCode: "E001"}, &models.JWTClaims{UserID: "op-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)

	_, err = svc.RecordScan(context.Background(), RecordScanRequest{EmployeeCode: "E001"}, nil)
	require.Error(t, err)
}
