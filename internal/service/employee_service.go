package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
)

type employeeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
}

type employeeTimingRepository interface {
	FindByID(ctx context.Context, id string) (*models.CycleTiming, error)
}

// EmployeeService manages employee master data.
type EmployeeService struct {
	repo      employeeRepository
	timings   employeeTimingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeRepository, timings employeeTimingRepository, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, timings: timings, validator: validate, logger: logger}
}

// CreateEmployeeRequest carries the fields the payroll core consumes.
type CreateEmployeeRequest struct {
	Code           string  `json:"code" validate:"required"`
	FullName       string  `json:"full_name" validate:"required"`
	DepartmentID   string  `json:"department_id" validate:"required"`
	ShiftTypeID    *string `json:"shift_type_id"`
	CycleTimingID  string  `json:"cycle_timing_id" validate:"required"`
	HourlyRate     float64 `json:"hourly_rate" validate:"gt=0"`
	JoinedAt       string  `json:"joined_at" validate:"required"`
	PFActive       bool    `json:"pf_active"`
	PFAmountPerDay float64 `json:"pf_amount_per_day" validate:"gte=0"`
	ESICActive     bool    `json:"esic_active"`
}

// List returns employees matching the filter.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return employees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one employee by ID.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "employee not found", "failed to fetch employee")
	}
	return employee, nil
}

// Create validates and inserts a new employee.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	joinedAt, err := time.Parse("2006-01-02", req.JoinedAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "joined_at must be YYYY-MM-DD")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee code already in use")
	}

	if _, err := s.timings.FindByID(ctx, req.CycleTimingID); err != nil {
		return nil, notFoundOrInternal(err, "cycle timing not found", "failed to fetch cycle timing")
	}

	employee := &models.Employee{
		Code:           req.Code,
		FullName:       req.FullName,
		DepartmentID:   req.DepartmentID,
		ShiftTypeID:    req.ShiftTypeID,
		CycleTimingID:  req.CycleTimingID,
		HourlyRate:     req.HourlyRate,
		JoinedAt:       joinedAt.UTC(),
		PFActive:       req.PFActive,
		PFAmountPerDay: req.PFAmountPerDay,
		ESICActive:     req.ESICActive,
		Active:         true,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}

	s.logger.Info("employee created", zap.String("employee_id", employee.ID), zap.String("code", employee.Code))
	return employee, nil
}
