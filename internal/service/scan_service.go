package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
)

// ScanAction tags the decision taken for an incoming scan.
type ScanAction string

const (
	ScanActionAppendOnly          ScanAction = "APPEND_ONLY"
	ScanActionAutoCloseThenAppend ScanAction = "AUTO_CLOSE_THEN_APPEND"
)

// ScanDecision is the outcome of the per-department state machine for one
// incoming scan: the direction of the new entry, plus an optional synthetic
// OUT closing a session left open in another department.
type ScanDecision struct {
	Action    ScanAction
	Direction models.ScanType
	Entry     models.ScanEntry
	AutoClose *models.ScanEntry
}

// DecideScan runs the two-state {OPEN, CLOSED} machine for the actor's
// department lane: no lane or last OUT yields IN, last IN yields OUT. When
// the new scan is an IN and a *different* department still has an open lane,
// the most recent such lane is force-closed with a synthetic OUT stamped one
// gap before the new entry. The open-lane search covers all departments, not
// just the actor's: a cross-department mismatch can never be found inside the
// department-filtered lane used for the IN/OUT toggle.
func DecideScan(lanes []models.DepartmentLane, actorDepartmentID string, now time.Time, autoCloseGap time.Duration) ScanDecision {
	if autoCloseGap <= 0 {
		autoCloseGap = time.Second
	}

	direction := models.ScanIn
	for _, lane := range lanes {
		if lane.DepartmentID == actorDepartmentID {
			if lane.Open() {
				direction = models.ScanOut
			}
			break
		}
	}

	decision := ScanDecision{
		Action:    ScanActionAppendOnly,
		Direction: direction,
		Entry: models.ScanEntry{
			ScannedAt:    now,
			ScanType:     direction,
			DepartmentID: actorDepartmentID,
		},
	}

	if direction != models.ScanIn {
		return decision
	}

	var dangling *models.DepartmentLane
	for i := range lanes {
		lane := lanes[i]
		if lane.DepartmentID == actorDepartmentID || !lane.Open() {
			continue
		}
		if dangling == nil || lane.ScannedAt.After(dangling.ScannedAt) {
			dangling = &lanes[i]
		}
	}
	if dangling != nil {
		decision.Action = ScanActionAutoCloseThenAppend
		decision.AutoClose = &models.ScanEntry{
			ScannedAt:    now.Add(-autoCloseGap),
			ScanType:     models.ScanOut,
			DepartmentID: dangling.DepartmentID,
			AutoClosed:   true,
		}
	}
	return decision
}

type scanEmployeeRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Employee, error)
}

type scanWalletRepository interface {
	AppendScan(ctx context.Context, employeeID string, decide func(lanes []models.DepartmentLane) ([]models.ScanEntry, error)) ([]models.ScanEntry, error)
}

// ScanService resolves scanned identities and records wallet entries.
type ScanService struct {
	employees    scanEmployeeRepository
	wallets      scanWalletRepository
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	autoCloseGap time.Duration
	now          func() time.Time
}

// NewScanService constructs the scan service.
func NewScanService(employees scanEmployeeRepository, wallets scanWalletRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, autoCloseGap time.Duration) *ScanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanService{
		employees:    employees,
		wallets:      wallets,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		autoCloseGap: autoCloseGap,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RecordScanRequest identifies the scanned employee.
type RecordScanRequest struct {
	EmployeeCode string `json:"employee_code" validate:"required"`
}

// RecordScanResult is returned to the scan station for display.
type RecordScanResult struct {
	EmployeeID           string          `json:"employee_id"`
	Direction            models.ScanType `json:"direction"`
	ScannedAt            time.Time       `json:"scanned_at"`
	AutoClosedDepartment *string         `json:"auto_closed_department,omitempty"`
}

// RecordScan decides the scan direction from the employee's wallet and
// appends the resulting entries. The wallet repository serializes concurrent
// scans for the same employee, so decide-and-append is atomic per employee.
func (s *ScanService) RecordScan(ctx context.Context, req RecordScanRequest, claims *models.JWTClaims) (*RecordScanResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scan payload")
	}
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "scan requires an authenticated operator")
	}
	if claims.DepartmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "scan operator has no department")
	}

	employee, err := s.employees.FindByCode(ctx, req.EmployeeCode)
	if err != nil {
		return nil, notFoundOrInternal(err, "employee not found", "failed to resolve scanned employee")
	}

	var decision ScanDecision
	entries, err := s.wallets.AppendScan(ctx, employee.ID, func(lanes []models.DepartmentLane) ([]models.ScanEntry, error) {
		decision = DecideScan(lanes, claims.DepartmentID, s.now(), s.autoCloseGap)
		pending := make([]models.ScanEntry, 0, 2)
		if decision.AutoClose != nil {
			autoClose := *decision.AutoClose
			autoClose.ScannedBy = claims.UserID
			pending = append(pending, autoClose)
		}
		entry := decision.Entry
		entry.ScannedBy = claims.UserID
		pending = append(pending, entry)
		return pending, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record scan")
	}

	if s.metrics != nil {
		s.metrics.RecordScan(string(decision.Direction), decision.AutoClose != nil)
	}

	result := &RecordScanResult{
		EmployeeID: employee.ID,
		Direction:  decision.Direction,
		ScannedAt:  entries[len(entries)-1].ScannedAt,
	}
	if decision.AutoClose != nil {
		dept := decision.AutoClose.DepartmentID
		result.AutoClosedDepartment = &dept
		s.logger.Info("auto-closed dangling session",
			zap.String("employee_id", employee.ID),
			zap.String("department_id", dept),
		)
	}
	return result, nil
}

func notFoundOrInternal(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMsg)
}
