package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

// EmployeeRepository manages persistence for employee master data.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, code, full_name, department_id, shift_type_id, cycle_timing_id,
        hourly_rate, joined_at, pf_active, pf_amount_per_day, esic_active, active, created_at, updated_at`

// FindByID fetches an employee by primary key.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id = $1", employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByCode fetches an employee by the badge code used at scan stations.
func (r *EmployeeRepository) FindByCode(ctx context.Context, code string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE code = $1", employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, code); err != nil {
		return nil, err
	}
	return &employee, nil
}

// List returns employees matching the filter with pagination.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	conditions, args := buildEmployeeConditions(filter)
	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"code":       "code",
		"joined_at":  "joined_at",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM employees WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		employeeColumns, where, column, order, size, offset)

	employees := make([]models.Employee, 0)
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	return employees, total, nil
}

// ListEligible returns every employee matching the filter without pagination,
// ordered by code. Batch computation walks this set.
func (r *EmployeeRepository) ListEligible(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error) {
	conditions, args := buildEmployeeConditions(filter)
	query := fmt.Sprintf("SELECT %s FROM employees WHERE %s ORDER BY code ASC",
		employeeColumns, strings.Join(conditions, " AND "))

	employees := make([]models.Employee, 0)
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, fmt.Errorf("list eligible employees: %w", err)
	}
	return employees, nil
}

// Create inserts a new employee record.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	employee.CreatedAt = now
	employee.UpdatedAt = now
	query := `INSERT INTO employees (id, code, full_name, department_id, shift_type_id, cycle_timing_id,
        hourly_rate, joined_at, pf_active, pf_amount_per_day, esic_active, active, created_at, updated_at)
        VALUES (:id, :code, :full_name, :department_id, :shift_type_id, :cycle_timing_id,
        :hourly_rate, :joined_at, :pf_active, :pf_amount_per_day, :esic_active, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update persists mutable employee fields.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	employee.UpdatedAt = time.Now().UTC()
	query := `UPDATE employees SET code = :code, full_name = :full_name, department_id = :department_id,
        shift_type_id = :shift_type_id, cycle_timing_id = :cycle_timing_id, hourly_rate = :hourly_rate,
        joined_at = :joined_at, pf_active = :pf_active, pf_amount_per_day = :pf_amount_per_day,
        esic_active = :esic_active, active = :active, updated_at = :updated_at
        WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, employee)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("employee %s not found", employee.ID)
	}
	return nil
}

// ExistsByCode checks badge-code uniqueness, optionally excluding an ID.
func (r *EmployeeRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM employees WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("check employee code: %w", err)
	}
	return exists == 1, nil
}

func buildEmployeeConditions(filter models.EmployeeFilter) ([]string, []interface{}) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 6)

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.ShiftTypeID != "" {
		conditions = append(conditions, fmt.Sprintf("shift_type_id = $%d", len(args)+1))
		args = append(args, filter.ShiftTypeID)
	}
	if filter.CycleTimingID != "" {
		conditions = append(conditions, fmt.Sprintf("cycle_timing_id = $%d", len(args)+1))
		args = append(args, filter.CycleTimingID)
	}
	if filter.JoinedBefore != nil {
		conditions = append(conditions, fmt.Sprintf("joined_at <= $%d", len(args)+1))
		args = append(args, *filter.JoinedBefore)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(code) LIKE $%d)", idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	return conditions, args
}
