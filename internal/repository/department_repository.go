package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/manpower-adp-api/internal/models"
)

// DepartmentRepository manages department master data.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns all departments ordered by name.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	query := "SELECT id, name, created_at FROM departments ORDER BY name ASC"
	departments := make([]models.Department, 0)
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindByID fetches a department by primary key.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	query := "SELECT id, name, created_at FROM departments WHERE id = $1"
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// Create inserts a new department.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	department.CreatedAt = time.Now().UTC()
	query := "INSERT INTO departments (id, name, created_at) VALUES (:id, :name, :created_at)"
	if _, err := r.db.NamedExecContext(ctx, query, department); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}
