package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
}

type shiftTypeRepository interface {
	List(ctx context.Context) ([]models.ShiftType, error)
	Create(ctx context.Context, shiftType *models.ShiftType) error
}

// DepartmentService manages department and shift-type master data.
type DepartmentService struct {
	departments departmentRepository
	shiftTypes  shiftTypeRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(departments departmentRepository, shiftTypes shiftTypeRepository, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{departments: departments, shiftTypes: shiftTypes, validator: validate, logger: logger}
}

// CreateNamedRequest is the payload for department and shift-type creation.
type CreateNamedRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// ListDepartments returns all departments.
func (s *DepartmentService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// CreateDepartment validates and inserts a department.
func (s *DepartmentService) CreateDepartment(ctx context.Context, req CreateNamedRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	department := &models.Department{Name: req.Name}
	if err := s.departments.Create(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	return department, nil
}

// ListShiftTypes returns all shift types.
func (s *DepartmentService) ListShiftTypes(ctx context.Context) ([]models.ShiftType, error) {
	shiftTypes, err := s.shiftTypes.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shift types")
	}
	return shiftTypes, nil
}

// CreateShiftType validates and inserts a shift type.
func (s *DepartmentService) CreateShiftType(ctx context.Context, req CreateNamedRequest) (*models.ShiftType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift type payload")
	}
	shiftType := &models.ShiftType{Name: req.Name}
	if err := s.shiftTypes.Create(ctx, shiftType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift type")
	}
	return shiftType, nil
}
